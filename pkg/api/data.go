package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/wikid-app/feed/pkg/errorx"
)

type Parameter map[string]string

func (p Parameter) ToReader() (io.Reader, string, error) {
	return bytes.NewBufferString(p.Encode()), "application/x-www-form-urlencoded", nil
}

func (p Parameter) Encode() string {
	var parameters []string
	for key, value := range p {
		parameters = append(parameters, key+"="+PercentEncode(value))
	}
	sort.Strings(parameters)
	return strings.Join(parameters, "&")
}

type JSON map[string]any

type Array []JSON

func (j JSON) ToReader() (io.Reader, string, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewBuffer(b), "application/json", nil
}

func (m JSON) GetBool(key string) (bool, error) {
	value, err := m.Get(key)
	if err != nil {
		return false, err
	}

	if value == nil {
		return false, nil
	}

	if b, ok := value.(bool); ok {
		return b, nil
	}

	return false, fmt.Errorf("invalid type of field %s (%T)", key, value)
}

func (m JSON) GetString(key string) (string, error) {
	value, err := m.Get(key)
	if err != nil {
		return "", err
	}

	if value == nil {
		return "", nil
	}

	if s, ok := value.(string); ok {
		return s, nil
	}

	return "", fmt.Errorf("invalid type of field %s (%T)", key, value)
}

func (m JSON) Get(key string) (any, error) {
	key, subKey, found := strings.Cut(key, ".")

	value, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("not found field %s", key)
	}

	if found {
		switch t := value.(type) {
		case map[string]any:
			return JSON(t).Get(subKey)
		case JSON:
			return t.Get(subKey)
		}
		return nil, fmt.Errorf("invalid type of field %s (%T)", key, value)
	}

	return value, nil
}

// MultipartFile is one file part of a Multipart body.
type MultipartFile struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Multipart is a multipart/form-data body. Fields keep insertion order.
type Multipart struct {
	fields [][2]string
	files  []MultipartFile
}

func NewMultipart() *Multipart {
	return &Multipart{}
}

func (m *Multipart) Field(name, value string) *Multipart {
	m.fields = append(m.fields, [2]string{name, value})
	return m
}

func (m *Multipart) File(f MultipartFile) *Multipart {
	m.files = append(m.files, f)
	return m
}

func (m *Multipart) ToReader() (io.Reader, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	for _, f := range m.fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(f.Field), escapeQuotes(f.Name)))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		} else {
			h.Set("Content-Type", "application/octet-stream")
		}

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}

		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}

func bytesToJSON(body []byte) (JSON, error) {
	result := JSON{}
	err := json.Unmarshal(body, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func bytesToArray(body []byte) (Array, error) {
	result := Array{}
	err := json.Unmarshal(body, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

type Response struct {
	Code    int
	Header  http.Header
	Body    any
	RawBody []byte
}

// Decode unmarshals the raw response body into v.
func (r *Response) Decode(v any) error {
	if len(r.RawBody) == 0 {
		return errorx.New(errorx.BadResponse, "Empty response body")
	}

	if err := json.Unmarshal(r.RawBody, v); err != nil {
		return errorx.New(errorx.BadResponse, "Cannot decode response: %v", err)
	}

	return nil
}

// ErrorMessage is one entry of the hot API error envelope
// {"errors": [{"message": "..."}]}.
type ErrorMessage struct {
	Message string `mapstructure:"message"`
	Field   string `mapstructure:"field"`
}

// Errors extracts the error envelope, if any.
func (r *Response) Errors() []ErrorMessage {
	body, ok := r.Body.(JSON)
	if !ok {
		return nil
	}

	raw, ok := body["errors"]
	if !ok || raw == nil {
		return nil
	}

	var errs []ErrorMessage
	if err := mapstructure.Decode(raw, &errs); err != nil {
		return []ErrorMessage{{Message: UnexpectedErrorMessage}}
	}

	return errs
}

// Err converts a failed response into an errorx.Error. Responses carrying an
// error envelope are failures even with a 2xx status.
func (r *Response) Err() error {
	errs := r.Errors()
	if r.Code < 400 && len(errs) == 0 {
		return nil
	}

	msg := UnexpectedErrorMessage
	if len(errs) > 0 && errs[0].Message != "" {
		msg = errs[0].Message
	}

	switch {
	case r.Code == http.StatusUnauthorized || r.Code == http.StatusForbidden:
		return errorx.New(errorx.Unauthenticated, msg)
	case r.Code == http.StatusNotFound:
		return errorx.New(errorx.NotFound, msg)
	case r.Code >= 500:
		return errorx.New(errorx.Unavailable, msg)
	default:
		return errorx.New(errorx.BadRequest, msg)
	}
}
