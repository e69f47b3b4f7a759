package inquiries

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/foodlink-backend/pkg/errors"
)

const (
	MaxAttachments     = 5
	MaxAttachmentBytes = 5 << 20
	// MaxFormBytes leaves room for the text fields on top of the attachments.
	MaxFormBytes = MaxAttachments*MaxAttachmentBytes + 1<<20
)

// allowedAttachmentTypes maps sniffed MIME types to the stored extension.
var allowedAttachmentTypes = map[string]string{
	"image/png":       "png",
	"image/jpeg":      "jpg",
	"image/webp":      "webp",
	"image/gif":       "gif",
	"application/pdf": "pdf",
}

// preparedAttachment is a validated attachment ready for upload.
type preparedAttachment struct {
	Data        []byte
	ContentType string
	Ext         string
}

// prepareAttachments validates count, size and sniffed content type. The
// client supplied filename and content type are ignored.
func prepareAttachments(files []Attachment) ([]preparedAttachment, error) {
	if len(files) > MaxAttachments {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("첨부파일은 최대 %d개까지 등록할 수 있습니다.", MaxAttachments)).
			WithDetails(map[string]any{"count": len(files)})
	}

	out := make([]preparedAttachment, 0, len(files))
	for _, f := range files {
		if len(f.Data) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "빈 파일은 첨부할 수 없습니다.").
				WithDetails(map[string]any{"filename": f.Filename})
		}
		if len(f.Data) > MaxAttachmentBytes {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "첨부파일은 5MB 이하만 등록할 수 있습니다.").
				WithDetails(map[string]any{"filename": f.Filename, "size": len(f.Data)})
		}
		detected := mimetype.Detect(f.Data)
		contentType := strings.ToLower(strings.SplitN(detected.String(), ";", 2)[0])
		ext, ok := allowedAttachmentTypes[contentType]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "이미지(PNG, JPEG, WEBP, GIF) 또는 PDF 파일만 첨부할 수 있습니다.").
				WithDetails(map[string]any{"filename": f.Filename, "detected": contentType})
		}
		out = append(out, preparedAttachment{Data: f.Data, ContentType: contentType, Ext: ext})
	}
	return out, nil
}

// attachmentKey builds {ownerId}/inquiries/{unixMillis}-{random}.{ext}.
func attachmentKey(owner uuid.UUID, at time.Time, ext string) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		copy(buf, uuid.New().NodeID())
	}
	return fmt.Sprintf("%s/inquiries/%d-%s.%s", owner, at.UnixMilli(), hex.EncodeToString(buf), ext)
}
