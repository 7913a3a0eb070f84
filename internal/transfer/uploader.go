package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"resumectl/internal/config"
	"resumectl/internal/intake"
	xlog "resumectl/internal/log"
	"resumectl/pkg/types"
	"resumectl/pkg/utils"
)

// maxResponseBytes bounds how much of the response body is decoded.
const maxResponseBytes = 1 << 20

// Uploader sends one candidate file to the submission endpoint. Errors are
// *Failure values, or plain errors that are treated as transport failures.
type Uploader interface {
	Upload(ctx context.Context, file intake.CandidateFile, progress ProgressFunc) (types.SubmissionResult, error)
}

// HTTPUploader posts the file as a multipart form.
type HTTPUploader struct {
	client   *http.Client
	endpoint string
	field    string
	token    string
	logger   zerolog.Logger
}

// NewHTTPUploader creates an uploader for cfg. A nil client uses a fresh
// http.Client with cfg.Timeout.
func NewHTTPUploader(cfg config.EndpointConfig, client *http.Client, logger zerolog.Logger) (*HTTPUploader, error) {
	endpoint, err := cfg.SubmitURL()
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	field := cfg.Field
	if field == "" {
		field = "resume"
	}
	return &HTTPUploader{
		client:   client,
		endpoint: endpoint,
		field:    field,
		token:    cfg.Token,
		logger:   logger,
	}, nil
}

func (u *HTTPUploader) Upload(ctx context.Context, file intake.CandidateFile, progress ProgressFunc) (types.SubmissionResult, error) {
	var zero types.SubmissionResult

	f, err := os.Open(file.Path)
	if err != nil {
		return zero, &Failure{Reason: ReasonTransportFailure, Detail: err.Error(), Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return zero, &Failure{Reason: ReasonTransportFailure, Detail: err.Error(), Err: err}
	}

	body, contentType, length, err := u.multipartBody(f, info.Size(), file)
	if err != nil {
		f.Close()
		return zero, &Failure{Reason: ReasonTransportFailure, Detail: err.Error(), Err: err}
	}

	pr := &progressReader{Reader: body, Closer: f, total: length, progress: progress}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		f.Close()
		return zero, &Failure{Reason: ReasonTransportFailure, Detail: err.Error(), Err: err}
	}
	req.ContentLength = length
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if u.token != "" {
		req.Header.Set("Authorization", "Bearer "+u.token)
	}

	u.logger.Debug().
		Str(xlog.FieldEndpoint, u.endpoint).
		Str(xlog.FieldFile, file.Name).
		Int64(xlog.FieldSize, length).
		Msg("posting resume")

	// The transport closes pr, and with it the file, on every path.
	resp, err := u.client.Do(req)
	if err != nil {
		return zero, &Failure{Reason: ReasonTransportFailure, Detail: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return zero, &Failure{
			Reason:     ReasonNonSuccessStatus,
			Detail:     statusText(resp),
			StatusCode: resp.StatusCode,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return zero, &Failure{Reason: ReasonTransportFailure, Detail: err.Error(), StatusCode: resp.StatusCode, Err: err}
	}
	result, err := utils.DecodeJSON[types.SubmissionResult](data)
	if err != nil {
		return zero, malformed(resp.StatusCode, "%w", err)
	}
	if result.ResumeID == "" {
		return zero, malformed(resp.StatusCode, "missing resumeId")
	}
	return result, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody lays out the form as header, file bytes and trailer so the
// full length is known before anything is sent.
func (u *HTTPUploader) multipartBody(r io.Reader, size int64, file intake.CandidateFile) (io.Reader, string, int64, error) {
	var head bytes.Buffer
	mw := multipart.NewWriter(&head)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(u.field), quoteEscaper.Replace(file.Name)))
	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)
	if _, err := mw.CreatePart(h); err != nil {
		return nil, "", 0, fmt.Errorf("build form: %w", err)
	}

	tail := "\r\n--" + mw.Boundary() + "--\r\n"
	length := int64(head.Len()) + size + int64(len(tail))
	body := io.MultiReader(&head, io.LimitReader(r, size), strings.NewReader(tail))
	return body, mw.FormDataContentType(), length, nil
}

// statusText extracts the reason phrase, e.g. "Internal Server Error".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = "status " + strconv.Itoa(resp.StatusCode)
	}
	return text
}
