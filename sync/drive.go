package sync

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/oauth2"
)

// DriveUploadEndpoint is the Google Drive multipart upload endpoint.
const DriveUploadEndpoint = "https://www.googleapis.com/upload/drive/v3/files"

// googleOAuth2Endpoint avoids pulling in the whole google auth package
// for two well-known URLs.
var googleOAuth2Endpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// DriveUploader uploads backup files into a Google Drive folder using
// authorized-user credentials. This is the archival side channel only,
// nothing in the reconciliation path depends on it.
type DriveUploader struct {
	FolderID        string
	CredentialsJSON string
	TokenJSON       string
	Endpoint        string
	Transport       http.RoundTripper
}

// NewDriveUploader builds an uploader from the run configuration.
func NewDriveUploader(cfg Config) *DriveUploader {
	return &DriveUploader{
		FolderID:        cfg.API.Ids.DriveFolder,
		CredentialsJSON: cfg.API.Keys.DriveCredentials,
		TokenJSON:       cfg.API.Keys.DriveToken,
		Endpoint:        DriveUploadEndpoint,
		Transport:       NewRetryTransport(nil),
	}
}

func (u *DriveUploader) oauthConfig() (*oauth2.Config, *oauth2.Token, error) {
	if u.CredentialsJSON == "" || u.TokenJSON == "" {
		return nil, nil, fmt.Errorf("google drive credentials or token not configured")
	}
	token := gjson.Parse(u.TokenJSON)
	creds := gjson.Parse(u.CredentialsJSON)

	clientID := token.Get("client_id").String()
	if clientID == "" {
		clientID = creds.Get("installed.client_id").String()
	}
	clientSecret := token.Get("client_secret").String()
	if clientSecret == "" {
		clientSecret = creds.Get("installed.client_secret").String()
	}
	refreshToken := token.Get("refresh_token").String()
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, nil, fmt.Errorf("google drive token is missing client id, secret or refresh token")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     googleOAuth2Endpoint,
		Scopes:       []string{"https://www.googleapis.com/auth/drive"},
	}
	return conf, &oauth2.Token{RefreshToken: refreshToken}, nil
}

// Upload sends the file at path into the configured folder and returns
// the created file id.
func (u *DriveUploader) Upload(ctx context.Context, path string) (string, error) {
	conf, token, err := u.oauthConfig()
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read backup file %w", err)
	}

	metadata, _ := sjson.Set("{}", "name", filepath.Base(path))
	if u.FolderID != "" {
		metadata, _ = sjson.Set(metadata, "parents.0", u.FolderID)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	metaPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=UTF-8"},
	})
	if err != nil {
		return "", err
	}
	if _, err = metaPart.Write([]byte(metadata)); err != nil {
		return "", err
	}
	mediaPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/csv"},
	})
	if err != nil {
		return "", err
	}
	if _, err = mediaPart.Write(content); err != nil {
		return "", err
	}
	if err = writer.Close(); err != nil {
		return "", err
	}

	// the retry transport has to sit under the oauth2 layer so token
	// refresh calls get the same policy
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Timeout:   HTTPRequestTimeout,
		Transport: u.Transport,
	})
	client := conf.Client(ctx, token)

	var raw string
	err = requests.
		URL(u.Endpoint).
		Client(client).
		Param("uploadType", "multipart").
		Param("fields", "id").
		Post().
		BodyBytes(body.Bytes()).
		ContentType("multipart/related; boundary=" + writer.Boundary()).
		ToString(&raw).
		Fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to upload backup to google drive %w", err)
	}
	return gjson.Get(raw, "id").String(), nil
}
