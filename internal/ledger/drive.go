package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

const driveUploadEndpoint = "https://www.googleapis.com/upload/drive/v3/files?uploadType=multipart"

// ArchiveAudio stores a received voice message in the configured Drive
// folder. With no folder configured it is a no-op.
func (c *SheetsClient) ArchiveAudio(ctx context.Context, name string, audio []byte) error {
	if c.folderID == "" {
		return nil
	}
	if c.tokens == nil {
		return ErrNotConfigured
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	meta, err := json.Marshal(map[string]any{
		"name":    name,
		"parents": []string{c.folderID},
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return err
	}
	if _, err := part.Write(meta); err != nil {
		return err
	}

	part, err = w.CreatePart(textproto.MIMEHeader{"Content-Type": {"audio/m4a"}})
	if err != nil {
		return err
	}
	if _, err := part.Write(audio); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, driveUploadEndpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "multipart/related; boundary="+w.Boundary())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("drive upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("drive upload: %s: %s", resp.Status, string(b))
	}
	return nil
}
