package notification

import (
	"errors"
	"net/mail"
	"regexp"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/academicflow/backend/core/academic"
)

// ErrUnresolvedRecipient is returned when an address cannot possibly be an
// email. Rejection happens at insertion time, never silently later.
var ErrUnresolvedRecipient = errors.New("unresolved recipient")

var nonAddressChars = regexp.MustCompile(`[^a-z0-9.]+`)

// RecipientSet is a unique, order-irrelevant set of email addresses.
type RecipientSet struct {
	addrs map[string]mail.Address
}

func NewRecipientSet() *RecipientSet {
	return &RecipientSet{addrs: make(map[string]mail.Address)}
}

// Add inserts an address; duplicates collapse. Strings without an '@' are
// rejected right away.
func (rs *RecipientSet) Add(name, address string) error {
	address = strings.ToLower(strings.TrimSpace(address))
	if !strings.Contains(address, "@") {
		return pkgerrors.Wrapf(ErrUnresolvedRecipient, "%q is not an email address", address)
	}
	if _, ok := rs.addrs[address]; !ok {
		rs.addrs[address] = mail.Address{Name: name, Address: address}
	}
	return nil
}

// AddStudent inserts a roster student's address. A student with no email on
// file gets a synthetic name-based address under the institution domain; the
// student ID is folded in so same-named students never collide.
func (rs *RecipientSet) AddStudent(st academic.Student, institutionDomain string) error {
	if st.Email != "" {
		return rs.Add(st.Name, st.Email)
	}
	local := slug(st.Name)
	if id := slug(st.ID); id != "" {
		local += "." + id
	}
	return rs.Add(st.Name, local+"@"+institutionDomain)
}

func (rs *RecipientSet) Len() int { return len(rs.addrs) }

// Addresses returns the set sorted by address for deterministic iteration.
func (rs *RecipientSet) Addresses() []mail.Address {
	out := make([]mail.Address, 0, len(rs.addrs))
	for _, a := range rs.addrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// ComposeRecipients builds the recipient set for a course notification: the
// union of the roster's addresses and any manually added extras.
func ComposeRecipients(course academic.Course, extra []string, institutionDomain string) (*RecipientSet, error) {
	rs := NewRecipientSet()
	for _, st := range course.Students {
		if err := rs.AddStudent(st, institutionDomain); err != nil {
			return nil, err
		}
	}
	for _, addr := range extra {
		if err := rs.Add("", addr); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", ".")
	s = nonAddressChars.ReplaceAllString(s, "")
	return strings.Trim(s, ".")
}
