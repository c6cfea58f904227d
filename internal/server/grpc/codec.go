package grpc

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
)

const dateLayout = time.DateOnly

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// accountPayload is the wire shape of an account. Password and action token
// are accepted on input but never written back.
type accountPayload struct {
	ID                   *int64          `json:"id,omitempty" validate:"omitempty,gt=0"`
	Login                string          `json:"login" validate:"required,email,max=254"`
	Password             string          `json:"password,omitempty" validate:"max=256"`
	Gender               string          `json:"gender,omitempty" validate:"max=16"`
	FirstName            string          `json:"firstName,omitempty" validate:"max=100"`
	LastName             string          `json:"lastName,omitempty" validate:"max=100"`
	PhoneNumber          string          `json:"phoneNumber,omitempty" validate:"max=32"`
	BirthDate            string          `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Address              *addressPayload `json:"address,omitempty" validate:"omitempty"`
	DeliveryAddress      *addressPayload `json:"deliveryAddress,omitempty" validate:"omitempty"`
	PreferredLocale      string          `json:"preferredLocale,omitempty" validate:"max=35"`
	Activated            bool            `json:"activated"`
	ActionToken          string          `json:"actionToken,omitempty" validate:"omitempty,uuid"`
	Disabled             bool            `json:"disabled"`
	NewsletterSubscribed bool            `json:"newsletterSubscribed"`
	Roles                []string        `json:"roles,omitempty"`
}

type addressPayload struct {
	ID              *int64 `json:"id,omitempty"`
	Street          string `json:"street,omitempty" validate:"max=200"`
	City            string `json:"city,omitempty" validate:"max=100"`
	ZipCode         string `json:"zipCode,omitempty" validate:"max=20"`
	CountryIso3Code string `json:"countryIso3Code,omitempty" validate:"omitempty,len=3,alpha,uppercase"`
}

// decodeAccount validates s and converts it to an account. A create payload
// must carry a password and no id at all, not even 0. Every failure wraps
// common.ErrorInvalidRequest.
func decodeAccount(s *structpb.Struct, forCreate bool) (*models.Account, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: empty payload", common.ErrorInvalidRequest)
	}
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidRequest, err)
	}

	var p accountPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidRequest, err)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrorInvalidRequest, describeValidation(err))
	}
	if forCreate {
		if p.ID != nil {
			return nil, fmt.Errorf("%w: account id must not be set", common.ErrorInvalidRequest)
		}
		if err := validate.Var(p.Password, "required"); err != nil {
			return nil, fmt.Errorf("%w: password is required", common.ErrorInvalidRequest)
		}
	}

	a := &models.Account{
		Login:                p.Login,
		Password:             p.Password,
		Gender:               p.Gender,
		FirstName:            p.FirstName,
		LastName:             p.LastName,
		PhoneNumber:          p.PhoneNumber,
		Address:              p.Address.toModel(),
		DeliveryAddress:      p.DeliveryAddress.toModel(),
		PreferredLocale:      p.PreferredLocale,
		Activated:            p.Activated,
		Disabled:             p.Disabled,
		NewsletterSubscribed: p.NewsletterSubscribed,
	}
	if p.ID != nil {
		a.ID = *p.ID
	}
	if p.BirthDate != "" {
		d, _ := time.Parse(dateLayout, p.BirthDate)
		a.BirthDate = &d
	}
	if p.ActionToken != "" {
		tok, _ := uuid.Parse(p.ActionToken)
		a.ActionToken = &tok
	}
	for _, r := range p.Roles {
		a.Roles = append(a.Roles, models.Role{Name: r})
	}
	return a, nil
}

func (p *addressPayload) toModel() *models.Address {
	if p == nil {
		return nil
	}
	a := &models.Address{
		Street:          p.Street,
		City:            p.City,
		ZipCode:         p.ZipCode,
		CountryIso3Code: p.CountryIso3Code,
	}
	if p.ID != nil {
		a.ID = *p.ID
	}
	return a
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", strings.TrimPrefix(fe.Namespace(), "accountPayload."), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func encodeAccount(a *models.Account) (*structpb.Struct, error) {
	m := map[string]any{
		"id":                   a.ID,
		"login":                a.Login,
		"activated":            a.Activated,
		"disabled":             a.Disabled,
		"newsletterSubscribed": a.NewsletterSubscribed,
	}
	setString(m, "gender", a.Gender)
	setString(m, "firstName", a.FirstName)
	setString(m, "lastName", a.LastName)
	setString(m, "phoneNumber", a.PhoneNumber)
	setString(m, "preferredLocale", a.PreferredLocale)
	if a.BirthDate != nil {
		m["birthDate"] = a.BirthDate.Format(dateLayout)
	}
	if a.Address != nil {
		m["address"] = encodeAddress(a.Address)
	}
	if a.DeliveryAddress != nil {
		m["deliveryAddress"] = encodeAddress(a.DeliveryAddress)
	}
	roles := make([]any, 0, len(a.Roles))
	for _, r := range a.Roles {
		roles = append(roles, r.Name)
	}
	m["roles"] = roles

	return structpb.NewStruct(m)
}

func encodeAddress(a *models.Address) map[string]any {
	m := map[string]any{"id": a.ID}
	setString(m, "street", a.Street)
	setString(m, "city", a.City)
	setString(m, "zipCode", a.ZipCode)
	setString(m, "countryIso3Code", a.CountryIso3Code)
	return m
}

func encodeAccounts(list []*models.Account) (*structpb.ListValue, error) {
	values := make([]*structpb.Value, 0, len(list))
	for _, a := range list {
		s, err := encodeAccount(a)
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(s))
	}
	return &structpb.ListValue{Values: values}, nil
}

func setString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	}
}

// listQuery is the FindAll/Count request: an optional search term and
// optional page bounds.
type listQuery struct {
	Search *string `json:"search,omitempty"`
	Start  *int    `json:"start,omitempty"`
	Size   *int    `json:"size,omitempty"`
}

func decodeListQuery(s *structpb.Struct) (listQuery, error) {
	var q listQuery
	if s == nil {
		return q, nil
	}
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return q, fmt.Errorf("%w: %v", common.ErrorInvalidRequest, err)
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return q, fmt.Errorf("%w: %v", common.ErrorInvalidRequest, err)
	}
	return q, nil
}

func (q listQuery) page() models.Page {
	return models.Page{Start: q.Start, Size: q.Size}
}
