package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kinganjia/backend/internal/common"
)

// bind decodes the JSON body into dst and runs the binding tags. Failures
// come back as a validation error with one entry per offending field.
func bind(c *gin.Context, dst any) error {
	const op = "httpapi.bind"

	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = describe(fe)
		}
		return common.Validation(op, "", fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return common.Validation(op, "", map[string]string{typeErr.Field: "Invalid value"})
	}

	return common.Validation(op, "Malformed request body", nil)
}

var jsonNamesOnce sync.Once

// useJSONNames makes validation errors report JSON field names, so
// ImageInput.URL nested in a claim comes back as images[0].url.
func useJSONNames() {
	jsonNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})
	})
}

// fieldPath drops the root struct name from the error namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("Failed %s check", fe.Tag())
	}
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.Validation("httpapi.pathID", "Invalid id", map[string]string{name: "Must be a positive integer"})
	}
	return id, nil
}

// expectedVersion reads If-Match. An absent header means no version check;
// 3, "3" and W/"3" are accepted.
func expectedVersion(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.GetHeader(common.IfMatchHeader))
	if raw == "" || raw == "*" {
		return 0, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, common.Validation("httpapi.expectedVersion", "Invalid If-Match header",
			map[string]string{common.IfMatchHeader: "Must be a version number"})
	}
	return v, nil
}

func setETag(c *gin.Context, version int64) {
	c.Header("ETag", strconv.Quote(strconv.FormatInt(version, 10)))
}
