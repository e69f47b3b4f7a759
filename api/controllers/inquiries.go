package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/foodlink-backend/api/responses"
	"github.com/angelmondragon/foodlink-backend/api/validators"
	"github.com/angelmondragon/foodlink-backend/internal/inquiries"
	"github.com/angelmondragon/foodlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
)

const (
	attachmentField = "attachments"
	multipartMemory = 8 << 20
)

// InquiryCreate accepts multipart/form-data with title, content, type,
// optional wholesalerId/orderId and up to five files under "attachments".
func InquiryCreate(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := parseInquiryForm(w, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), caller, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func parseInquiryForm(w http.ResponseWriter, r *http.Request) (*inquiries.CreateInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, inquiries.MaxFormBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "첨부파일 용량이 너무 큽니다.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "multipart/form-data 형식으로 요청해주세요.")
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	input := &inquiries.CreateInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Type:    enums.InquiryType(strings.TrimSpace(r.FormValue("type"))),
	}
	if input.Type == "" {
		input.Type = enums.InquiryTypeGeneral
	}

	var err error
	if input.WholesalerID, err = optionalFormUUID(r, "wholesalerId"); err != nil {
		return nil, err
	}
	if input.OrderID, err = optionalFormUUID(r, "orderId"); err != nil {
		return nil, err
	}

	if r.MultipartForm != nil {
		files := r.MultipartForm.File[attachmentField]
		if len(files) > inquiries.MaxAttachments {
			// reading is skipped; the service reports the count
			input.Attachments = make([]inquiries.Attachment, len(files))
			return input, nil
		}
		for _, fh := range files {
			data, err := readAttachment(fh)
			if err != nil {
				return nil, err
			}
			input.Attachments = append(input.Attachments, inquiries.Attachment{Filename: fh.Filename, Data: data})
		}
	}
	return input, nil
}

func readAttachment(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "첨부파일을 읽을 수 없습니다.")
	}
	defer f.Close()
	// one byte past the limit lets the service detect oversize files
	data, err := io.ReadAll(io.LimitReader(f, inquiries.MaxAttachmentBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "첨부파일을 읽을 수 없습니다.")
	}
	return data, nil
}

func optionalFormUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "올바른 ID 형식이 아닙니다.").WithDetails(map[string]any{"field": key})
	}
	return &id, nil
}

func InquiryList(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListMine(r.Context(), caller, inquiries.ListInput{Pagination: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func InquiryDetail(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLParamUUID(r, "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		inquiry, err := svc.Get(r.Context(), caller, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"inquiry": inquiry})
	}
}

type updateInquiryRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func InquiryUpdate(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLParamUUID(r, "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateInquiryRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		inquiry, err := svc.Update(r.Context(), caller, inquiries.UpdateInput{ID: id, Title: payload.Title, Content: payload.Content})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"inquiry": inquiry})
	}
}

func InquiryDelete(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLParamUUID(r, "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), caller, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

type inquiryFeedbackRequest struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

// InquiryFeedback records whether the AI draft reply was helpful.
func InquiryFeedback(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLParamUUID(r, "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload inquiryFeedbackRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Feedback(r.Context(), caller, inquiries.FeedbackInput{ID: id, Helpful: *payload.Helpful}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

type answerInquiryRequest struct {
	Answer string `json:"answer" validate:"required"`
}

func AdminInquiryAnswer(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.URLParamUUID(r, "inquiryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload answerInquiryRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		inquiry, err := svc.Answer(r.Context(), caller, inquiries.AnswerInput{ID: id, Answer: payload.Answer})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"inquiry": inquiry})
	}
}
