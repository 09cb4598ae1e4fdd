package sink

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/oauth2/clientcredentials"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/oauth"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// IngestMethod is the bidirectional record ingest RPC.
const IngestMethod = "/ourastream.sink.v1.RecordIngest/Stream"

const tableHeader = "x-sink-table-name"

var errStreamClosed = errors.New("sink stream closed")

var ingestStreamDesc = grpc.StreamDesc{
	StreamName:    "Stream",
	ServerStreams: true,
	ClientStreams: true,
}

// GRPCConfig addresses the ingest endpoint and its OAuth client.
type GRPCConfig struct {
	Endpoint     string
	WorkspaceURL string
	ClientID     string
	ClientSecret string
	TableName    string
}

// Dial connects over TLS with client-credentials tokens from the workspace.
func Dial(cfg GRPCConfig) (*grpc.ClientConn, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("sink endpoint is required")
	}
	tokens := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     strings.TrimRight(cfg.WorkspaceURL, "/") + "/oidc/v1/token",
		Scopes:       []string{"all-apis"},
	}
	conn, err := grpc.NewClient(cfg.Endpoint,
		grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})),
		grpc.WithPerRPCCredentials(oauth.TokenSource{TokenSource: tokens.TokenSource(context.Background())}),
	)
	if err != nil {
		return nil, fmt.Errorf("dial sink: %w", err)
	}
	return conn, nil
}

// OpenGRPCStream returns an opener that starts one ingest stream per call.
func OpenGRPCStream(conn grpc.ClientConnInterface, table string) StreamOpener {
	return func(ctx context.Context) (Stream, error) {
		streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		streamCtx = metadata.AppendToOutgoingContext(streamCtx, tableHeader, table)
		cs, err := conn.NewStream(streamCtx, &ingestStreamDesc, IngestMethod)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("open sink stream: %w", err)
		}
		s := &grpcStream{
			stream:  cs,
			cancel:  cancel,
			table:   table,
			pending: make(map[int64]*grpcAck),
		}
		go s.receive()
		return s, nil
	}
}

type grpcStream struct {
	stream grpc.ClientStream
	cancel context.CancelFunc
	table  string

	sendMu sync.Mutex

	mu         sync.Mutex
	nextOffset int64
	pending    map[int64]*grpcAck
	err        error
}

type grpcAck struct {
	done chan error
}

func (a *grpcAck) Wait(ctx context.Context) error {
	select {
	case err := <-a.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *grpcStream) Ingest(_ context.Context, record Record) (Ack, error) {
	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return nil, err
	}
	offset := s.nextOffset
	s.nextOffset++
	ack := &grpcAck{done: make(chan error, 1)}
	s.pending[offset] = ack
	s.mu.Unlock()

	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"offset": structpb.NewNumberValue(float64(offset)),
		"table":  structpb.NewStringValue(s.table),
		"record": structpb.NewStructValue(record.Struct()),
	}}

	s.sendMu.Lock()
	err := s.stream.SendMsg(req)
	s.sendMu.Unlock()
	if err != nil {
		s.mu.Lock()
		delete(s.pending, offset)
		s.mu.Unlock()
		return nil, fmt.Errorf("send record: %w", err)
	}
	return ack, nil
}

func (s *grpcStream) Close() error {
	s.sendMu.Lock()
	err := s.stream.CloseSend()
	s.sendMu.Unlock()
	s.fail(errStreamClosed)
	s.cancel()
	return err
}

// receive resolves acks in offset order; an ack covers every lower offset.
func (s *grpcStream) receive() {
	for {
		resp := &structpb.Struct{}
		if err := s.stream.RecvMsg(resp); err != nil {
			if errors.Is(err, io.EOF) {
				err = errStreamClosed
			}
			s.fail(err)
			return
		}
		fields := resp.GetFields()
		if msg := fields["error"].GetStringValue(); msg != "" {
			offset := int64(fields["offset"].GetNumberValue())
			s.resolve(offset, offset, fmt.Errorf("sink rejected record: %s", msg))
			continue
		}
		acked, ok := fields["ack_offset"]
		if !ok {
			continue
		}
		s.resolve(-1, int64(acked.GetNumberValue()), nil)
	}
}

func (s *grpcStream) resolve(from, to int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for offset, ack := range s.pending {
		if offset > to || (from >= 0 && offset < from) {
			continue
		}
		ack.done <- err
		delete(s.pending, offset)
	}
}

func (s *grpcStream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
	for offset, ack := range s.pending {
		ack.done <- err
		delete(s.pending, offset)
	}
}
