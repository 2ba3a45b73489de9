// Package itembank holds the input side of an item bank fetch: endpoint and
// credentials validation, and the request packet sent to the Data API.
//
// Everything here is pure. Nothing in this package performs network I/O, so
// a caller can reject malformed input before a client is ever constructed.
//
// # Basic Usage
//
//	endpoint, err := itembank.ValidateEndpoint("items")
//	if err != nil {
//		return err
//	}
//
//	creds, err := itembank.LoadCredentials("credentials.json")
//	if err != nil {
//		return err
//	}
//
//	packet := itembank.MakeRequestPacket(nil, itembank.DefaultLimit)
//	url := itembank.BuildURL(itembank.DefaultBaseURL, endpoint)
//
// All validation failures are *InvalidArgumentError values and match
// ErrInvalidArgument with errors.Is.
package itembank
