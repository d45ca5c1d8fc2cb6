package amazon

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	signingAlgorithm = "AWS4-HMAC-SHA256"
	signingService   = "execute-api"
)

// Credentials holds the AWS access key pair used for request signing.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// SignRequest computes AWS Signature Version 4 headers for a request
// against the SP-API, fixed to the execute-api service scope. It returns a
// copy of headers extended with Authorization and X-Amz-Date.
//
// The canonicalization is the simplified form the SP-API call site needs:
// the path line carries the already-encoded query string verbatim and the
// canonical query-string line is left empty. Header values are joined as
// lowercase-sorted "name:value" lines without additional trimming. This is
// not a general-purpose SigV4 canonicalizer; callers adding endpoints with
// unencoded or reordered query parameters must canonicalize the query
// string first.
//
// The function is pure: identical inputs and clock value produce a
// byte-identical Authorization header.
func SignRequest(method, rawURL string, headers map[string]string, payload string, creds Credentials, region string, now time.Time) (map[string]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}

	path := u.Path
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	now = now.UTC()
	dateStamp := now.Format("20060102")
	timeStamp := now.Format("20060102T150405Z")

	names := make([]string, 0, len(headers))
	lowered := make(map[string]string, len(headers))
	for name, value := range headers {
		lname := strings.ToLower(name)
		names = append(names, lname)
		lowered[lname] = value
	}
	sort.Strings(names)

	var canonicalHeaders strings.Builder
	for _, name := range names {
		canonicalHeaders.WriteString(name)
		canonicalHeaders.WriteByte(':')
		canonicalHeaders.WriteString(lowered[name])
		canonicalHeaders.WriteByte('\n')
	}
	signedHeaders := strings.Join(names, ";")

	payloadHash := sha256.Sum256([]byte(payload))
	payloadHashHex := hex.EncodeToString(payloadHash[:])

	canonicalRequest := strings.Join([]string{
		method,
		path,
		"", // canonical query string line, empty in this scope
		canonicalHeaders.String(),
		signedHeaders,
		payloadHashHex,
	}, "\n")

	credentialScope := fmt.Sprintf("%s/%s/%s/aws4_request", dateStamp, region, signingService)
	canonicalRequestHash := sha256.Sum256([]byte(canonicalRequest))

	stringToSign := strings.Join([]string{
		signingAlgorithm,
		timeStamp,
		credentialScope,
		hex.EncodeToString(canonicalRequestHash[:]),
	}, "\n")

	kDate := hmacSHA256([]byte("AWS4"+creds.SecretAccessKey), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, signingService)
	kSigning := hmacSHA256(kService, "aws4_request")
	signature := hex.EncodeToString(hmacSHA256(kSigning, stringToSign))

	authorization := fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		signingAlgorithm, creds.AccessKeyID, credentialScope, signedHeaders, signature)

	signed := make(map[string]string, len(headers)+2)
	for name, value := range headers {
		signed[name] = value
	}
	signed["Authorization"] = authorization
	signed["X-Amz-Date"] = timeStamp

	return signed, nil
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
