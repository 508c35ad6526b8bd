package rest

// Kind classifies a request pipeline failure. The taxonomy is closed:
// every error produced by the pipeline carries exactly one Kind.
type Kind uint8

const (
	// KindUnknown indicates a transport failure with no specific mapping.
	KindUnknown Kind = 0

	// KindEncoding indicates the request body could not be encoded.
	KindEncoding Kind = 1

	// KindDecoding indicates the response body could not be decoded.
	KindDecoding Kind = 2

	// KindInvalidURL indicates a request URL could not be built.
	KindInvalidURL Kind = 3

	// KindUnexpectedResponse indicates a response outside the documented
	// surface, such as an unmapped status or a success without a body
	// where one is required.
	KindUnexpectedResponse Kind = 4

	// KindNotReady indicates the request was not ready to be sent,
	// typically because no base URL has been established.
	KindNotReady Kind = 5
)

// Transport-level kinds, derived from the underlying network error.
const (
	// KindTimeout indicates the exchange exceeded its deadline.
	KindTimeout Kind = 10

	// KindUnknownHost indicates the host name could not be resolved.
	KindUnknownHost Kind = 11

	// KindUnreachable indicates the appliance refused or could not accept
	// the connection.
	KindUnreachable Kind = 12

	// KindConnectionLost indicates the connection dropped mid-exchange.
	KindConnectionLost Kind = 13

	// KindNoNetwork indicates no usable network path exists.
	KindNoNetwork Kind = 14

	// KindTLSFailure indicates the TLS handshake failed.
	KindTLSFailure Kind = 15

	// KindInvalidCertificate indicates the appliance certificate was
	// rejected.
	KindInvalidCertificate Kind = 16
)

// Status-derived kinds, one per documented HTTP error status.
const (
	// KindBadRequest maps HTTP 400.
	KindBadRequest Kind = 20

	// KindUnauthorized maps HTTP 401.
	KindUnauthorized Kind = 21

	// KindForbidden maps HTTP 403, returned by appliances whose local API
	// is switched off.
	KindForbidden Kind = 22

	// KindNotFound maps HTTP 404.
	KindNotFound Kind = 23

	// KindMethodNotAllowed maps HTTP 405.
	KindMethodNotAllowed Kind = 24

	// KindConflict maps HTTP 409.
	KindConflict Kind = 25

	// KindPreconditionFailed maps HTTP 412.
	KindPreconditionFailed Kind = 26

	// KindUnsupportedMediaType maps HTTP 415.
	KindUnsupportedMediaType Kind = 27

	// KindUnprocessableEntity maps HTTP 422.
	KindUnprocessableEntity Kind = 28

	// KindFailedDependency maps HTTP 424.
	KindFailedDependency Kind = 29

	// KindInternalServerError maps HTTP 500.
	KindInternalServerError Kind = 30

	// KindBadGateway maps HTTP 502.
	KindBadGateway Kind = 31

	// KindServiceUnavailable maps HTTP 503.
	KindServiceUnavailable Kind = 32

	// KindGatewayTimeout maps HTTP 504.
	KindGatewayTimeout Kind = 33
)

// statusKinds maps documented HTTP error statuses to their Kind.
var statusKinds = map[int]Kind{
	400: KindBadRequest,
	401: KindUnauthorized,
	403: KindForbidden,
	404: KindNotFound,
	405: KindMethodNotAllowed,
	409: KindConflict,
	412: KindPreconditionFailed,
	415: KindUnsupportedMediaType,
	422: KindUnprocessableEntity,
	424: KindFailedDependency,
	500: KindInternalServerError,
	502: KindBadGateway,
	503: KindServiceUnavailable,
	504: KindGatewayTimeout,
}

// KindForStatus returns the Kind for an HTTP status code and whether the
// status is part of the documented set.
func KindForStatus(status int) (Kind, bool) {
	kind, ok := statusKinds[status]
	return kind, ok
}

// IsTransport reports whether the kind was derived from a transport-level
// failure.
func (k Kind) IsTransport() bool {
	return k >= KindTimeout && k <= KindInvalidCertificate
}

// IsStatus reports whether the kind was derived from an HTTP status code.
func (k Kind) IsStatus() bool {
	return k >= KindBadRequest && k <= KindGatewayTimeout
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "UNKNOWN"
	case KindEncoding:
		return "ENCODING"
	case KindDecoding:
		return "DECODING"
	case KindInvalidURL:
		return "INVALID_URL"
	case KindUnexpectedResponse:
		return "UNEXPECTED_RESPONSE"
	case KindNotReady:
		return "NOT_READY"
	case KindTimeout:
		return "TIMEOUT"
	case KindUnknownHost:
		return "UNKNOWN_HOST"
	case KindUnreachable:
		return "UNREACHABLE"
	case KindConnectionLost:
		return "CONNECTION_LOST"
	case KindNoNetwork:
		return "NO_NETWORK"
	case KindTLSFailure:
		return "TLS_FAILURE"
	case KindInvalidCertificate:
		return "INVALID_CERTIFICATE"
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case KindConflict:
		return "CONFLICT"
	case KindPreconditionFailed:
		return "PRECONDITION_FAILED"
	case KindUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	case KindUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case KindFailedDependency:
		return "FAILED_DEPENDENCY"
	case KindInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	case KindBadGateway:
		return "BAD_GATEWAY"
	case KindServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	case KindGatewayTimeout:
		return "GATEWAY_TIMEOUT"
	default:
		return "UNKNOWN"
	}
}
