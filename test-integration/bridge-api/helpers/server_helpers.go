package helpers

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/onsi/gomega"

	bridgeapp "github.com/stacklok/mbean-bridge/internal/app"
	"github.com/stacklok/mbean-bridge/internal/config"
)

// ServerTestHelper manages the bridge server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	baseURL    string
	address    string
	httpClient *http.Client
	app        *bridgeapp.BridgeApp
	dataDir    string
}

// NewServerTestHelper creates a new server test helper listening on a free port
func NewServerTestHelper(ctx context.Context, configPath string, dataDir string) (*ServerTestHelper, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to find a free port: %w", err)
	}
	address := listener.Addr().String()
	if err := listener.Close(); err != nil {
		return nil, err
	}

	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		address:    address,
		baseURL:    "http://" + address,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		dataDir:    dataDir,
	}, nil
}

// StartServer starts the bridge server programmatically
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := bridgeapp.NewBridgeApp(s.ctx,
		bridgeapp.WithConfig(cfg),
		bridgeapp.WithAddress(s.address),
		bridgeapp.WithDataDirectory(s.dataDir),
		bridgeapp.WithBackendWait(0),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = app

	go func() {
		if err := app.Start(); err != nil {
			// The test fails when it tries to connect
			fmt.Fprintf(os.Stderr, "Server start failed: %v\n", err)
		}
	}()

	return nil
}

// StopServer gracefully stops the bridge server
func (s *ServerTestHelper) StopServer() error {
	if s.app != nil {
		return s.app.Stop(5 * time.Second)
	}
	return nil
}

// WaitForServerReady waits for the server to be ready to accept requests
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/health")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// Get makes a GET request to the given path
func (s *ServerTestHelper) Get(path string) (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + path)
}

// Post makes a POST request without a body to the given path
func (s *ServerTestHelper) Post(path string) (*http.Response, error) {
	return s.httpClient.Post(s.baseURL+path, "application/json", nil)
}

// PostJSON makes a POST request with a JSON body to the given path
func (s *ServerTestHelper) PostJSON(path string, body io.Reader) (*http.Response, error) {
	return s.httpClient.Post(s.baseURL+path, "application/json", body)
}

// GetJSON makes a GET request and decodes a 200 response into out
func (s *ServerTestHelper) GetJSON(path string, out any) {
	resp, err := s.Get(path)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	DecodeResponse(resp, http.StatusOK, out)
}

// PostForJSON makes a POST request and decodes a 200 response into out
func (s *ServerTestHelper) PostForJSON(path string, out any) {
	resp, err := s.Post(path)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	DecodeResponse(resp, http.StatusOK, out)
}

// DecodeResponse checks the status code and decodes the body into out
func DecodeResponse(resp *http.Response, wantStatus int, out any) {
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	gomega.Expect(resp.StatusCode).To(gomega.Equal(wantStatus), "body: %s", body)
	if out != nil {
		gomega.Expect(json.Unmarshal(body, out)).To(gomega.Succeed())
	}
}
