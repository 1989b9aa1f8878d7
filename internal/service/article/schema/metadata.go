package schema

import (
	"errors"
	"regexp"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blogwriter/internal/domain"
	"blogwriter/internal/domain/models/article"
)

var notBlank = regexp.MustCompile(`\S`)

var (
	errBlank     = validation.NewError("validation_blank", "cannot be blank")
	errDateOrder = validation.NewError("validation_date_order", "must not be before publicationDate")
)

// metadataViolations applies value rules to a metadata object. Type and
// presence problems are left to the JSON schema, so every rule here is
// guarded on the value already having the right type.
func metadataViolations(inst any) []domain.Violation {
	root, ok := inst.(map[string]any)
	if !ok {
		return nil
	}
	meta, ok := root["metadata"].(map[string]any)
	if !ok {
		return nil
	}

	published, hasPublished := meta["publicationDate"].(string)
	_, hasUpdated := meta["updatedDate"].(string)
	_, hasTitle := meta["title"].(string)
	keywords, hasKeywords := meta["keywords"].([]any)

	err := validation.Validate(meta, validation.Map(
		validation.Key("title",
			validation.When(hasTitle,
				validation.Required.ErrorObject(errBlank),
				validation.Match(notBlank).ErrorObject(errBlank),
			),
		).Optional(),
		validation.Key("publicationDate",
			validation.When(hasPublished, validation.Date(article.DateFormat).Error("must be an RFC3339 date-time")),
		).Optional(),
		validation.Key("updatedDate",
			validation.When(hasUpdated,
				validation.Date(article.DateFormat).Error("must be an RFC3339 date-time"),
				validation.By(notBefore(published, hasPublished)),
			),
		).Optional(),
		validation.Key("keywords",
			validation.When(hasKeywords && allStrings(keywords),
				validation.Each(
					validation.Required.ErrorObject(errBlank),
					validation.Match(notBlank).ErrorObject(errBlank),
				),
			),
		).Optional(),
	).AllowExtraKeys())

	var out []domain.Violation
	flatten("/metadata", err, &out)
	return out
}

func notBefore(published string, ok bool) validation.RuleFunc {
	return func(value any) error {
		updated, _ := value.(string)
		if !ok {
			return nil
		}
		p, err := time.Parse(article.DateFormat, published)
		if err != nil {
			return nil
		}
		u, err := time.Parse(article.DateFormat, updated)
		if err != nil {
			return nil
		}
		if u.Before(p) {
			return errDateOrder
		}
		return nil
	}
}

func allStrings(values []any) bool {
	for _, v := range values {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

// flatten turns nested ozzo errors into pointer-addressed violations.
func flatten(path string, err error, out *[]domain.Violation) {
	if err == nil {
		return
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(path+"/"+escape(k), errs[k], out)
		}
		return
	}

	kind := domain.ViolationFormat
	var ve validation.Error
	if errors.As(err, &ve) {
		switch ve.Code() {
		case errBlank.Code():
			kind = domain.ViolationRequired
		case errDateOrder.Code():
			kind = domain.ViolationStructure
		}
	}
	*out = append(*out, domain.Violation{Path: path, Kind: kind, Message: err.Error()})
}
