package gdrive

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go-openclaw-cv-sender/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	DefaultPageSize     = 20
	DefaultMaxFileBytes = 25 << 20

	googleAppsPrefix = "application/vnd.google-apps."
	exportMimeType   = "application/pdf"
)

// Client lists and downloads files from Google Drive
type Client struct {
	srv          *drive.Service
	maxFileBytes int64
}

// NewClient authenticates with a service account. credentials is either the
// JSON document itself or a path to it.
func NewClient(ctx context.Context, credentials string, maxFileBytes int64) (*Client, error) {
	data, err := loadCredentials(credentials)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %w", err)
	}
	return NewFromService(srv, maxFileBytes), nil
}

func NewFromService(srv *drive.Service, maxFileBytes int64) *Client {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	return &Client{srv: srv, maxFileBytes: maxFileBytes}
}

func loadCredentials(credentials string) ([]byte, error) {
	trimmed := strings.TrimSpace(credentials)
	if trimmed == "" {
		return nil, fmt.Errorf("service account credentials are empty")
	}
	if strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed), nil
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account file: %w", err)
	}
	return data, nil
}

// ListFiles returns the non-trashed files directly inside folderID.
// Only the first page is fetched.
func (c *Client) ListFiles(ctx context.Context, folderID string, pageSize int) ([]models.RemoteFile, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	q := fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))

	res, err := c.srv.Files.List().
		Q(q).
		PageSize(int64(pageSize)).
		Fields("files(id,name,mimeType)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, &models.RemoteFetchError{Op: "list folder", FileID: folderID, Err: err}
	}

	files := make([]models.RemoteFile, 0, len(res.Files))
	for _, f := range res.Files {
		files = append(files, models.RemoteFile{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
	}
	return files, nil
}

// FetchFile downloads the whole file into memory. Google-native documents
// are exported as PDF.
func (c *Client) FetchFile(ctx context.Context, fileID string) (models.FetchedFile, error) {
	meta, err := c.srv.Files.Get(fileID).Fields("name,mimeType").Context(ctx).Do()
	if err != nil {
		return models.FetchedFile{}, &models.RemoteFetchError{Op: "get metadata", FileID: fileID, Err: err}
	}

	name, mimeType := meta.Name, meta.MimeType
	var content []byte
	if strings.HasPrefix(mimeType, googleAppsPrefix) {
		resp, err := c.srv.Files.Export(fileID, exportMimeType).Context(ctx).Download()
		if err != nil {
			return models.FetchedFile{}, &models.RemoteFetchError{Op: "export", FileID: fileID, Err: err}
		}
		content, err = c.readAll(resp.Body)
		if err != nil {
			return models.FetchedFile{}, &models.RemoteFetchError{Op: "export", FileID: fileID, Err: err}
		}
		mimeType = exportMimeType
		if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
			name += ".pdf"
		}
	} else {
		resp, err := c.srv.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return models.FetchedFile{}, &models.RemoteFetchError{Op: "download", FileID: fileID, Err: err}
		}
		content, err = c.readAll(resp.Body)
		if err != nil {
			return models.FetchedFile{}, &models.RemoteFetchError{Op: "download", FileID: fileID, Err: err}
		}
	}

	return models.FetchedFile{Name: name, MimeType: mimeType, Content: content}, nil
}

func (c *Client) readAll(body io.ReadCloser) ([]byte, error) {
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, c.maxFileBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxFileBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", c.maxFileBytes)
	}
	return data, nil
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
