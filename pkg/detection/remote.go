package detection

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/teslashibe/go-wayfinder/internal/httpc"
	"github.com/teslashibe/go-wayfinder/pkg/protocol"
)

// DefaultRemoteTimeout bounds one inference request.
const DefaultRemoteTimeout = 2 * time.Second

// Remote posts each frame's JPEG to an HTTP inference service.
//
// The service answers with the DetectionResult JSON shape:
//
//	{"objects": [{"label": "chair", "confidence": 0.9, "bbox": [x, y, w, h]}]}
//
// Boxes are normalized. Frame id and timestamp are taken from the frame.
type Remote struct {
	url    string
	client *http.Client
}

// RemoteOption configures a Remote detector.
type RemoteOption func(*Remote)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.client = c }
}

// NewRemote creates a detector for the inference endpoint at rawURL.
func NewRemote(rawURL string, opts ...RemoteOption) (*Remote, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid inference url %q", ErrUnavailable, rawURL)
	}
	r := &Remote{
		url:    u.String(),
		client: httpc.NewClient(DefaultRemoteTimeout),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type remoteResponse struct {
	Objects []protocol.Detection `json:"objects"`
}

// Detect implements Detector.
func (r *Remote) Detect(ctx context.Context, frame protocol.FramePacket) (protocol.DetectionResult, error) {
	var resp remoteResponse
	if err := httpc.PostJSON(ctx, r.client, r.url, "image/jpeg", frame.JPEG, &resp); err != nil {
		return protocol.DetectionResult{}, fmt.Errorf("remote detect frame %d: %w", frame.FrameID, err)
	}
	return resultFor(frame, resp.Objects), nil
}

// Close implements Detector.
func (r *Remote) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
