package surface

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"image"
	"image/png"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	healthcheck "github.com/tavsec/gin-healthcheck"
	"github.com/tavsec/gin-healthcheck/checks"
	hc_config "github.com/tavsec/gin-healthcheck/config"
)

var ErrNoImage = errors.New("no image to display")

const shutdownTimeout = 5 * time.Second

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { background: #222; color: #ddd; font-family: sans-serif; text-align: center; }
img { image-rendering: pixelated; margin: 1em; background: repeating-conic-gradient(#888 0% 25%, #aaa 0% 50%) 50% / 16px 16px; }
</style>
</head>
<body>
<div><img id="raster" src="/image.png?v={{.Version}}" alt="{{.Title}}"></div>
<form method="post" action="/dismiss"><button type="submit">Close</button></form>
<script>
let version = {{.Version}};
setInterval(async () => {
  const res = await fetch("/version");
  if (!res.ok) return;
  const body = await res.json();
  if (body.version !== version) {
    version = body.version;
    document.getElementById("raster").src = "/image.png?v=" + version;
  }
}, 1000);
</script>
</body>
</html>
`))

type BrowserOpts struct {
	// Addr is the listen address, eg "localhost:8080". Port 0 picks a free port.
	Addr  string
	Title string
	// Debug exposes the pprof endpoints.
	Debug bool
}

// Browser serves the raster as a web page. Show blocks until the page's
// Close button is pressed, Dismiss is called or the context is done.
type Browser struct {
	opts   BrowserOpts
	engine *gin.Engine

	mu      sync.RWMutex
	encoded []byte
	version int

	dismissed chan struct{}
	once      sync.Once
}

func NewBrowser(opts BrowserOpts) (*Browser, error) {
	if opts.Title == "" {
		opts.Title = "Pixel array viewer"
	}

	b := &Browser{
		opts:      opts,
		dismissed: make(chan struct{}),
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/version"),
	)

	if opts.Debug {
		log.Println("WARNING: pprof endpoints are enabled and exposed.")
		pprof.Register(r)
	}

	if err := healthcheck.New(r, hc_config.DefaultConfig(), []checks.Check{}); err != nil {
		return nil, fmt.Errorf("failed to initialize healthcheck: %w", err)
	}

	r.GET("/", b.index)
	r.GET("/image.png", b.image)
	r.GET("/version", b.currentVersion)
	r.POST("/dismiss", b.dismiss)

	b.engine = r
	return b, nil
}

func (b *Browser) Handler() http.Handler {
	return b.engine
}

// Update replaces the displayed raster. Open pages pick up the change on
// their next poll.
func (b *Browser) Update(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode raster: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.encoded = buf.Bytes()
	b.version++
	return nil
}

func (b *Browser) Dismiss() {
	b.once.Do(func() { close(b.dismissed) })
}

func (b *Browser) Show(ctx context.Context, img image.Image) error {
	if err := b.Update(img); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", b.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", b.opts.Addr, err)
	}

	srv := &http.Server{Handler: b.engine}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	log.Printf("Viewer ready at http://%s/ (press Close or Ctrl-C to dismiss)", ln.Addr())

	var result error
	select {
	case <-b.dismissed:
		log.Println("Viewer dismissed")
	case <-ctx.Done():
		log.Println("Viewer interrupted")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			result = fmt.Errorf("viewer server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && result == nil {
		result = fmt.Errorf("failed to shut down viewer server: %w", err)
	}
	return result
}

func (b *Browser) index(c *gin.Context) {
	b.mu.RLock()
	version := b.version
	b.mu.RUnlock()

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	err := page.Execute(c.Writer, struct {
		Title   string
		Version int
	}{b.opts.Title, version})
	if err != nil {
		_ = c.Error(err)
	}
}

func (b *Browser) image(c *gin.Context) {
	b.mu.RLock()
	encoded := b.encoded
	b.mu.RUnlock()

	if encoded == nil {
		c.AbortWithError(http.StatusNotFound, ErrNoImage)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", encoded)
}

func (b *Browser) currentVersion(c *gin.Context) {
	b.mu.RLock()
	version := b.version
	b.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{"version": version})
}

func (b *Browser) dismiss(c *gin.Context) {
	b.Dismiss()
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<!DOCTYPE html><html><body>Viewer closed. You can close this tab.</body></html>"))
}
