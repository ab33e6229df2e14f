package archive

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// PageArchiver stores raw page HTML under <prefix>pages/<unix-nanos>.html
type PageArchiver struct {
	s3     *S3
	bucket string
	prefix string
	now    func() time.Time
}

// NewPageArchiver returns an archiver writing to bucket. prefix is expected
// to be empty or end in "/".
func NewPageArchiver(s3 *S3, bucket, prefix string) *PageArchiver {
	return &PageArchiver{s3: s3, bucket: bucket, prefix: prefix, now: time.Now}
}

// ArchivePage uploads html and returns the object key it was written to
func (a *PageArchiver) ArchivePage(ctx context.Context, sourceURL, html string) (string, error) {
	key := fmt.Sprintf("%spages/%d.html", a.prefix, a.now().UnixNano())
	if err := a.s3.Put(ctx, a.bucket, key, strings.NewReader(html), "text/html; charset=utf-8", ""); err != nil {
		return "", fmt.Errorf("archive %s to s3://%s/%s: %w", sourceURL, a.bucket, key, err)
	}
	return key, nil
}
