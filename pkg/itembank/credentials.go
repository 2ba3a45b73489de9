package itembank

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	credentialsFileMessage  = "you have to supply a valid path to a JSON file with your Learnosity credentials, see --help for more info"
	credentialsShapeMessage = "your credentials JSON doesn't match the expected shape, see --help for more details"
)

// Credentials are the consumer credentials for the Data API.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Domain         string

	// Fields is the full parsed credentials object, required keys included.
	Fields map[string]json.RawMessage
}

// credentialsDocument mirrors the required keys of a credentials file.
// RawMessage is non-nil whenever the key is present, even for a JSON null,
// so `required` checks presence only.
type credentialsDocument struct {
	ConsumerKey    json.RawMessage `json:"consumerKey" validate:"required"`
	ConsumerSecret json.RawMessage `json:"consumerSecret" validate:"required"`
	Domain         json.RawMessage `json:"domain" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateCredentialsFile reads path as UTF-8 text and checks that it holds
// a JSON document. The document is returned unparsed.
func ValidateCredentialsFile(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, invalidArgument("credentials", credentialsFileMessage, errors.New("no path given"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, invalidArgument("credentials", credentialsFileMessage, err)
	}

	if !utf8.Valid(data) {
		return nil, invalidArgument("credentials", credentialsFileMessage, errors.New("file is not UTF-8 text"))
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, invalidArgument("credentials", credentialsFileMessage, err)
	}

	return json.RawMessage(data), nil
}

// ValidateCredentials checks that raw is an object carrying consumerKey,
// consumerSecret and domain. Only presence is checked.
func ValidateCredentials(raw json.RawMessage) (Credentials, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Credentials{}, invalidArgument("credentials", credentialsShapeMessage, errors.New("expected a JSON object"))
	}

	doc := credentialsDocument{
		ConsumerKey:    fields["consumerKey"],
		ConsumerSecret: fields["consumerSecret"],
		Domain:         fields["domain"],
	}

	if err := validate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			missing := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				missing = append(missing, fe.Field())
			}
			sort.Strings(missing)
			return Credentials{}, invalidArgument("credentials", credentialsShapeMessage,
				errors.New("missing keys: "+strings.Join(missing, ", ")))
		}
		return Credentials{}, invalidArgument("credentials", credentialsShapeMessage, err)
	}

	return Credentials{
		ConsumerKey:    rawString(doc.ConsumerKey),
		ConsumerSecret: rawString(doc.ConsumerSecret),
		Domain:         rawString(doc.Domain),
		Fields:         fields,
	}, nil
}

// LoadCredentials reads and validates the credentials file at path.
func LoadCredentials(path string) (Credentials, error) {
	raw, err := ValidateCredentialsFile(path)
	if err != nil {
		return Credentials{}, err
	}
	return ValidateCredentials(raw)
}

// rawString returns a JSON string's value, or the literal text of any other
// JSON value. null maps to "".
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
