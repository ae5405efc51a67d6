package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academicflow/backend/core/alert"
)

type alertApi struct {
	svc      *alert.Service
	validate *validator.Validate
}

func registerAlertAPI(g *echo.Group, svc *alert.Service, validate *validator.Validate) {
	api := alertApi{svc: svc, validate: validate}

	ag := g.Group("/alerts")
	ag.POST("", api.create)
	ag.GET("", api.query)

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("/read", api.markRead)
	dg.GET("/history", api.history)
}

// Handlers

func (api *alertApi) create(ctx echo.Context) error {
	var data alert.NewAlert
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAlert")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	alrt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating alert")
	}
	return ctx.JSON(http.StatusCreated, alrt)
}

func (api *alertApi) query(ctx echo.Context) error {
	filter := new(alert.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []alert.Alert{})
	}

	alerts, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying alerts")
	}
	if alerts == nil {
		alerts = []alert.Alert{}
	}
	return ctx.JSON(http.StatusOK, alerts)
}

func (api *alertApi) retrieve(ctx echo.Context) error {
	alrt, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, alrt)
}

func (api *alertApi) markRead(ctx echo.Context) error {
	alrt, err := api.svc.MarkRead(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, alrt)
}

func (api *alertApi) history(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}

	hists, err := api.svc.History(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying send history")
	}
	if hists == nil {
		hists = []alert.SendHistory{}
	}
	return ctx.JSON(http.StatusOK, hists)
}
