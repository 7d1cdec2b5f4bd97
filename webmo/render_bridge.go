package webmo

import (
	"context"
	"fmt"

	"github.com/chemtools/webmo-go/webmo/render"
	"github.com/chemtools/webmo-go/webmo/result"
)

// RenderBridge returns the client's render bridge, creating it on first
// use. One bridge (and therefore one callback listener) is shared by all
// render calls of this client; it is torn down with the session by Close.
func (c *Client) RenderBridge(surface render.Surface) *render.Bridge {
	if c.bridge == nil {
		c.bridge = render.NewBridge(renderService{c}, surface, c.logger)
	}
	return c.bridge
}

// DisplayJobProperty renders an image of the given job's property on the
// display surface and returns the decoded image. See render.Bridge.Render
// for the property table and failure modes.
func (c *Client) DisplayJobProperty(ctx context.Context, surface render.Surface, jobNumber int, propertyName string, opts *render.Options) (*render.EmbeddedImage, error) {
	return c.RenderBridge(surface).Render(ctx, jobNumber, propertyName, opts)
}

// renderService adapts the client to the bridge's service interface
// without handing the bridge the client itself.
type renderService struct {
	c *Client
}

func (s renderService) ServerInfo(ctx context.Context) (render.ServerInfo, error) {
	status, err := s.c.StatusInfo(ctx)
	if err != nil {
		return render.ServerInfo{}, err
	}
	version, _ := status["version"].(string)
	if version == "" {
		return render.ServerInfo{}, fmt.Errorf("webmo: status document carries no version")
	}
	htmlBase, _ := status["url_html"].(string)
	cgiBase, _ := status["url_cgi"].(string)
	return render.ServerInfo{Version: version, HTMLBase: htmlBase, CGIBase: cgiBase}, nil
}

func (s renderService) JobGeometryDocument(ctx context.Context, jobNumber int) ([]byte, error) {
	return s.c.jobGeometryDocument(ctx, jobNumber)
}

func (s renderService) JobResults(ctx context.Context, jobNumber int) (*result.Document, error) {
	return s.c.JobResults(ctx, jobNumber)
}
