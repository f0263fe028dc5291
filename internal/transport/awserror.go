package transport

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// awsXMLError matches the three XML error envelopes AWS uses: a bare
// <Error> (S3), <ErrorResponse><Error> (query services) and
// <Response><Errors><Error> (EC2).
type awsXMLError struct {
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
	Error   struct {
		Code    string `xml:"Code"`
		Message string `xml:"Message"`
	} `xml:"Error"`
	Errors struct {
		Error struct {
			Code    string `xml:"Code"`
			Message string `xml:"Message"`
		} `xml:"Error"`
	} `xml:"Errors"`
	RequestID  string `xml:"RequestId"`
	RequestID2 string `xml:"RequestID"`
}

func (e awsXMLError) code() (string, string) {
	switch {
	case e.Code != "":
		return e.Code, e.Message
	case e.Error.Code != "":
		return e.Error.Code, e.Error.Message
	default:
		return e.Errors.Error.Code, e.Errors.Error.Message
	}
}

// parseAWSError parses AWS error responses (XML or JSON).
func parseAWSError(statusCode int, body []byte, headers http.Header) error {
	requestID := headers.Get("X-Amzn-Requestid")
	if requestID == "" {
		requestID = headers.Get("X-Amz-Request-Id")
	}

	// Try XML first (S3, query protocol services)
	var xmlErr awsXMLError
	if err := xml.Unmarshal(body, &xmlErr); err == nil {
		if code, message := xmlErr.code(); code != "" {
			if requestID == "" {
				requestID = xmlErr.RequestID + xmlErr.RequestID2
			}
			return classifyAWSError(statusCode, code, message, requestID)
		}
	}

	// Then JSON (JSON-RPC and REST-JSON services)
	var jsonErr struct {
		Type    string `json:"__type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &jsonErr); err == nil {
		code := jsonErr.Type
		if code == "" {
			code = jsonErr.Code
		}
		if code == "" {
			code = headers.Get("X-Amzn-Errortype")
		}
		if code != "" {
			return classifyAWSError(statusCode, shortCode(code), jsonErr.Message, requestID)
		}
	}

	if code := headers.Get("X-Amzn-Errortype"); code != "" {
		return classifyAWSError(statusCode, shortCode(code), "", requestID)
	}

	// Fallback to generic error
	errorType, retryable := classifyStatus(statusCode)
	return &TransportError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    fmt.Sprintf("AWS request failed with status %d", statusCode),
		RequestID:  requestID,
		Retryable:  retryable,
		Metadata: map[string]any{
			"response_body": sanitizeAWSError(string(body)),
		},
	}
}

// shortCode strips the namespace and header suffix from JSON error types:
// "com.amazonaws.dynamodb.v20120810#ResourceNotFoundException" and
// "ResourceNotFoundException:http://internal.amazon.com/" both become
// "ResourceNotFoundException".
func shortCode(code string) string {
	if i := strings.LastIndex(code, "#"); i >= 0 {
		code = code[i+1:]
	}
	if i := strings.Index(code, ":"); i >= 0 {
		code = code[:i]
	}
	return code
}

// classifyAWSError categorizes AWS errors by code and status.
func classifyAWSError(statusCode int, code, message, requestID string) error {
	message = sanitizeAWSError(message)

	var errorType ErrorType
	var retryable bool

	switch code {
	case "SignatureDoesNotMatch", "InvalidSignatureException", "InvalidAccessKeyId",
		"InvalidClientTokenId", "UnrecognizedClientException", "ExpiredToken",
		"ExpiredTokenException", "AuthFailure", "AccessDenied", "AccessDeniedException",
		"UnauthorizedOperation":
		errorType = ErrorTypeAuth
		retryable = false
	case "RequestLimitExceeded", "Throttling", "ThrottlingException", "TooManyRequestsException",
		"ProvisionedThroughputExceededException", "SlowDown":
		errorType = ErrorTypeRateLimit
		retryable = true
	case "RequestTimeout", "RequestTimeoutException":
		errorType = ErrorTypeTimeout
		retryable = true
	case "NoSuchEntity", "NoSuchBucket", "ResourceNotFoundException", "NotFoundException":
		errorType = ErrorTypeNotFound
		retryable = false
	default:
		// EC2 reports missing ids as InvalidInstanceID.NotFound and similar.
		if strings.HasSuffix(code, ".NotFound") {
			errorType = ErrorTypeNotFound
			retryable = false
			break
		}
		errorType, retryable = classifyStatus(statusCode)
	}

	text := fmt.Sprintf("AWS error %s", code)
	if message != "" {
		text = fmt.Sprintf("AWS error %s: %s", code, message)
	}
	return &TransportError{
		Type:       errorType,
		StatusCode: statusCode,
		Code:       code,
		Message:    text,
		RequestID:  requestID,
		Retryable:  retryable,
		Metadata: map[string]any{
			"aws_error_code": code,
		},
	}
}

func classifyStatus(statusCode int) (ErrorType, bool) {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorTypeAuth, false
	case statusCode == 404:
		return ErrorTypeNotFound, false
	case statusCode == 408:
		return ErrorTypeTimeout, true
	case statusCode == 429:
		return ErrorTypeRateLimit, true
	case statusCode >= 500:
		return ErrorTypeServer, true
	default:
		return ErrorTypeClient, false
	}
}

// accessKeyPattern matches long-term (AKIA) and temporary (ASIA) access key
// ids.
var accessKeyPattern = regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{12,16}\b`)

// sanitizeAWSError redacts access key ids. ARNs and bucket names are kept.
func sanitizeAWSError(msg string) string {
	return accessKeyPattern.ReplaceAllString(msg, "$1****")
}
