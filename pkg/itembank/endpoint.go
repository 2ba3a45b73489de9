package itembank

import "strings"

// Endpoint is an item bank resource served by the Data API.
type Endpoint string

const (
	EndpointActivities Endpoint = "activities"
	EndpointItems      Endpoint = "items"
	EndpointQuestions  Endpoint = "questions"
)

// DefaultBaseURL is the Data API item bank root. Endpoint names are appended
// to it verbatim.
const DefaultBaseURL = "https://data.learnosity.com/v1/itembank/"

// Endpoints lists every valid endpoint in display order.
func Endpoints() []Endpoint {
	return []Endpoint{EndpointActivities, EndpointItems, EndpointQuestions}
}

const endpointMessage = "Must be one of `activities`, `items`, or `questions`"

// ValidateEndpoint returns value as an Endpoint, or an InvalidArgumentError
// unless it is exactly one of the known names. Matching is case-sensitive.
func ValidateEndpoint(value string) (Endpoint, error) {
	for _, e := range Endpoints() {
		if value == string(e) {
			return e, nil
		}
	}
	return "", invalidArgument("endpoint", endpointMessage, nil)
}

// BuildURL joins base and endpoint. No escaping is applied; endpoint values
// come from a closed set.
func BuildURL(base string, endpoint Endpoint) string {
	return strings.Join([]string{base, string(endpoint)}, "")
}
