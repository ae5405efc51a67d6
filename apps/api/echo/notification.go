package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/academicflow/backend/core"
	"github.com/academicflow/backend/core/alert"
	"github.com/academicflow/backend/core/notification"
)

type notificationApi struct {
	alertSvc *alert.Service
	notifier *notification.Notifier
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, alertSvc *alert.Service, notifier *notification.Notifier, validate *validator.Validate) {
	api := notificationApi{alertSvc: alertSvc, notifier: notifier, validate: validate}

	ng := g.Group("/notifications")
	ng.POST("/send", api.send)
}

type (
	// SendRequest dispatches an existing alert by ID, or creates and dispatches
	// a new one in a single call.
	SendRequest struct {
		AlertID string          `json:"alert_id"`
		Alert   *alert.NewAlert `json:"alert"`
		Extra   []string        `json:"extra_recipients"`
	}

	SendResponse struct {
		AlertID string           `json:"alert_id"`
		State   string           `json:"state"`
		Reason  string           `json:"reason,omitempty"`
		Result  core.BatchResult `json:"result"`
	}
)

func (sr *SendRequest) Validate(validate *validator.Validate) error {
	if sr.AlertID == "" && sr.Alert == nil {
		return core.NewValidationError(errors.New("either alert_id or alert is required"))
	}
	if sr.AlertID != "" && sr.Alert != nil {
		return core.NewValidationError(errors.New("alert_id and alert are mutually exclusive"))
	}
	if sr.Alert != nil {
		return sr.Alert.Validate(validate)
	}
	return nil
}

// Handlers

func (api *notificationApi) send(ctx echo.Context) error {
	var data SendRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rctx := ctx.Request().Context()

	var alrt alert.Alert
	var err error
	if data.AlertID != "" {
		if alrt, err = api.alertSvc.GetByID(rctx, data.AlertID); err != nil {
			return err
		}
	} else {
		if alrt, err = api.alertSvc.Create(rctx, *data.Alert); err != nil {
			return errors.Wrap(err, "creating alert")
		}
	}

	disp, err := api.notifier.NotifyAlert(rctx, alrt, data.Extra)
	if err != nil {
		if core.IsChannelError(err) {
			// the batch as a whole could not go out; report it as data, not a 5xx
			return ctx.JSON(http.StatusOK, SendResponse{
				AlertID: alrt.ID,
				State:   string(disp.State),
				Reason:  disp.FailureReason,
				Result:  disp.Result,
			})
		}
		return err
	}

	return ctx.JSON(http.StatusOK, SendResponse{
		AlertID: alrt.ID,
		State:   string(disp.State),
		Result:  disp.Result,
	})
}
