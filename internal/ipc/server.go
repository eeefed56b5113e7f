package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/frogmemo/frogmemo/internal/runtimepath"
)

// Service is the daemon surface the IPC server dispatches to.
type Service interface {
	Status() StatusData
	Toggle(ctx context.Context) ToggleData
	StoreGet(key string) (json.RawMessage, error)
	StoreSet(key string, value json.RawMessage) error
	StoreDelete(key string) error
	StoreList() []string
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	service      Service
	readTimeout  time.Duration
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(service Service) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, service), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, service Service) *Server {
	return &Server{
		socketPath:  socketPath,
		service:     service,
		readTimeout: 10 * time.Second,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	if err := removeStaleSocket(s.socketPath); err != nil {
		return err
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// removeStaleSocket deletes a leftover socket file, refusing when another
// daemon is still answering on it.
func removeStaleSocket(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if conn, err := net.DialTimeout("unix", path, 200*time.Millisecond); err == nil {
		conn.Close()
		return fmt.Errorf("another daemon is already listening on %s", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandPing:
		return okOrError(nil)
	case CommandGetStatus:
		return okOrError(s.service.Status())
	case CommandToggle:
		return s.handleToggle()
	case CommandStoreGet:
		return s.handleStoreGet(req.Payload)
	case CommandStoreSet:
		return s.handleStoreSet(req.Payload)
	case CommandStoreDelete:
		return s.handleStoreDelete(req.Payload)
	case CommandStoreList:
		return okOrError(StoreListData{Keys: nonNil(s.service.StoreList())})
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleToggle() *Response {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data := s.service.Toggle(ctx)
	log.Printf("IPC: TOGGLE -> %s", data.Action)
	return okOrError(data)
}

func (s *Server) handleStoreGet(payload json.RawMessage) *Response {
	key, errResp := decodeKey(payload)
	if errResp != nil {
		return errResp
	}
	value, err := s.service.StoreGet(key)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return okOrError(StoreValueData{Key: key, Value: value})
}

func (s *Server) handleStoreSet(payload json.RawMessage) *Response {
	var req StoreSetPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid store set payload: %v", err))
	}
	if strings.TrimSpace(req.Key) == "" {
		return NewErrorResponse("key is required")
	}
	if len(req.Value) == 0 {
		return NewErrorResponse("value is required")
	}
	if err := s.service.StoreSet(req.Key, req.Value); err != nil {
		return NewErrorResponse(err.Error())
	}
	return okOrError(nil)
}

func (s *Server) handleStoreDelete(payload json.RawMessage) *Response {
	key, errResp := decodeKey(payload)
	if errResp != nil {
		return errResp
	}
	if err := s.service.StoreDelete(key); err != nil {
		return NewErrorResponse(err.Error())
	}
	return okOrError(nil)
}

func decodeKey(payload json.RawMessage) (string, *Response) {
	var req StoreKeyPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return "", NewErrorResponse(fmt.Sprintf("Invalid store payload: %v", err))
	}
	if strings.TrimSpace(req.Key) == "" {
		return "", NewErrorResponse("key is required")
	}
	return req.Key, nil
}

func okOrError(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func nonNil(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
