package data

import (
	"time"

	"github.com/thisisjab/signup-go/internal/form"
)

type Models struct {
	Form *FormModel
}

func NewModels(ttl time.Duration, opts ...form.Option) *Models {
	return &Models{
		Form: NewFormModel(ttl, opts...),
	}
}
