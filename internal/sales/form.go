package sales

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"tinttrack/internal/cpf"
)

// ErrInvalidForm is wrapped by every *FormError.
var ErrInvalidForm = errors.New("invalid form")

// FormError carries one message per failing field, keyed by JSON field name.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "invalid form: " + strings.Join(keys, ", ")
}

func (e *FormError) Unwrap() error { return ErrInvalidForm }

// SaleForm is submitted to register a sale, creating the customer on first use.
type SaleForm struct {
	CustomerName  string        `json:"customerName" validate:"required,min=2"`
	CustomerCPF   string        `json:"customerCpf" validate:"required,cpf"`
	CustomerPhone string        `json:"customerPhone"`
	Product       string        `json:"product" validate:"required,min=2"`
	ContainerSize ContainerSize `json:"containerSize" validate:"containersize"`
	Observations  string        `json:"observations"`
}

// SaleEditForm changes the editable fields of an existing sale.
type SaleEditForm struct {
	Product       string        `json:"product" validate:"required,min=2"`
	ContainerSize ContainerSize `json:"containerSize" validate:"containersize"`
	Observations  string        `json:"observations"`
}

// CustomerForm edits a customer's contact data. The CPF cannot change.
type CustomerForm struct {
	Name  string `json:"name" validate:"required,min=2"`
	Phone string `json:"phone"`
}

// messages maps field and failing tag to the user-facing message. The "*" tag
// is used when no specific entry exists.
var messages = map[string]map[string]string{
	"customerName":  {"*": "O nome deve ter pelo menos 2 caracteres."},
	"name":          {"*": "O nome deve ter pelo menos 2 caracteres."},
	"customerCpf":   {"required": "Informe o CPF do cliente.", "*": "CPF inválido."},
	"product":       {"*": "O nome do produto deve ter pelo menos 2 caracteres."},
	"containerSize": {"*": "Selecione um tamanho válido: lata, galão ou balde."},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidations installs the cpf and containersize tags on v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return cpf.LooksValid(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("containersize", func(fl validator.FieldLevel) bool {
		return ContainerSize(fl.Field().String()).Valid()
	})
}

// Normalize trims free text and reduces the CPF to digits.
func (f *SaleForm) Normalize() {
	f.CustomerName = strings.TrimSpace(f.CustomerName)
	f.CustomerCPF = strings.TrimSpace(f.CustomerCPF)
	f.CustomerPhone = strings.TrimSpace(f.CustomerPhone)
	f.Product = strings.TrimSpace(f.Product)
	f.Observations = strings.TrimSpace(f.Observations)
}

// Validate checks the form and normalizes it on success.
func (f *SaleForm) Validate() error {
	f.Normalize()
	if err := check(f); err != nil {
		return err
	}
	f.CustomerCPF = cpf.Digits(f.CustomerCPF)
	return nil
}

// Validate checks the form.
func (f *SaleEditForm) Validate() error {
	f.Product = strings.TrimSpace(f.Product)
	f.Observations = strings.TrimSpace(f.Observations)
	return check(f)
}

// Validate checks the form.
func (f *CustomerForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	return check(f)
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := &FormError{Fields: make(map[string]string, len(verrs))}
	for _, v := range verrs {
		fe.Fields[v.Field()] = messageFor(v.Field(), v.Tag())
	}
	return fe
}

func messageFor(field, tag string) string {
	if m, ok := messages[field]; ok {
		if msg, ok := m[tag]; ok {
			return msg
		}
		return m["*"]
	}
	return "Valor inválido."
}
