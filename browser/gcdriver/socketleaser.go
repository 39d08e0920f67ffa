package gcdriver

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// SocketPrefix on cfg.RemoteURL selects a leaser listening on a unix socket
const SocketPrefix = "unix:"

// SocketLeaser asks a leaser service on a unix socket for browsers
type SocketLeaser struct {
	leaserClient http.Client
}

// NewSocketLeaser talking to the service at sock
func NewSocketLeaser(sock string) *SocketLeaser {
	s := &SocketLeaser{}
	s.leaserClient = http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", sock)
			},
		},
	}
	return s
}

func (s *SocketLeaser) get(path string) (int, string, error) {
	resp, err := s.leaserClient.Get("http://unix" + path)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, strings.TrimSpace(string(body)), nil
}

// Acquire a new browser
func (s *SocketLeaser) Acquire() (string, error) {
	status, port, err := s.get("/acquire")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", errors.Errorf("acquire failed with %d: %s", status, port)
	}
	return port, nil
}

// Count how many browsers
func (s *SocketLeaser) Count() (string, error) {
	_, count, err := s.get("/count")
	return count, err
}

// Return (and kill) the browser
func (s *SocketLeaser) Return(port string) error {
	status, _, err := s.get("/return?port=" + port)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return errors.New("browser not found")
	}
	return nil
}

// Cleanup all old browser processes
func (s *SocketLeaser) Cleanup() (string, error) {
	status, response, err := s.get("/cleanup")
	if err != nil {
		return "", err
	}
	if status == http.StatusInternalServerError {
		return "", errors.New(response)
	}
	return response, nil
}
