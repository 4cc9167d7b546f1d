// Package probe implements the Probe Engine from spec §4.4: a single
// outbound HTTP client tuned to look like a real browser, with a
// HEAD-then-GET bot-challenge retry and deadline-bound classification.
package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"time"

	domain "github.com/pingerus/monitor-core/internal/domain/probe"
	"github.com/pingerus/monitor-core/internal/obs"
)

// botChallengeStatuses are the HEAD response codes that trigger the GET
// retry in spec §4.4 step 4 — sites that reject HEAD or rate-limit bots.
var botChallengeStatuses = map[int]bool{403: true, 405: true, 406: true, 429: true, 503: true}

type Config struct {
	Timeout             time.Duration
	DegradedThresholdMS int
	VerifyTLS           bool
	FollowRedirects     bool
}

// Engine issues probes using the teacher's transport tuning (dialer
// timeouts, idle pool, TLS min version), adapted to a randomized
// browser-identity header set instead of a single configured UA.
type Engine struct {
	httpc *http.Client
	cfg   Config
}

func New(cfg Config) *Engine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.DegradedThresholdMS <= 0 {
		cfg.DegradedThresholdMS = 3000
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}
	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: obs.WrapHTTPTransport(transport),
	}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &Engine{httpc: client, cfg: cfg}
}

// Check runs the full spec §4.4 algorithm against rawURL and returns a
// fully classified Result — never an error; transport failures become a
// down Result carrying ErrKind/ErrorMessage.
func (e *Engine) Check(ctx context.Context, rawURL string) domain.Result {
	ua := randomAgent()
	start := time.Now()

	resp, err := e.do(ctx, http.MethodHead, rawURL, ua)
	if err == nil && botChallengeStatuses[resp.StatusCode] {
		resp.Body.Close()
		time.Sleep(time.Duration(100+rand.Intn(200)) * time.Millisecond)
		resp, err = e.do(ctx, http.MethodGet, rawURL, ua)
	}

	latencyMS := int(time.Since(start).Milliseconds())
	if err != nil {
		return domain.Failure(classifyErr(err), latencyMS, err.Error())
	}
	defer resp.Body.Close()

	isHealthy, status := domain.Classify(resp.StatusCode, latencyMS, e.cfg.DegradedThresholdMS)
	return domain.Result{
		StatusCode:   resp.StatusCode,
		LatencyMS:    latencyMS,
		IsHealthy:    isHealthy,
		HealthStatus: status,
	}
}

func (e *Engine) do(ctx context.Context, method, rawURL string, ua agent) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	applyBrowserHeaders(req, ua)
	return e.httpc.Do(req)
}

func applyBrowserHeaders(req *http.Request, ua agent) {
	req.Header.Set("User-Agent", ua.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	if !ua.chromium {
		return
	}
	req.Header.Set("Sec-CH-UA", ua.secCHUABrand())
	req.Header.Set("Sec-CH-UA-Mobile", "?0")
	req.Header.Set("Sec-CH-UA-Platform", `"`+ua.platform+`"`)
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Sec-Fetch-Dest", "document")
}

// classifyErr replaces the source's "abort"/"timeout" substring match (spec
// §9 redesign flag) with a typed check against context deadline/cancel and
// net.Error.Timeout().
func classifyErr(err error) domain.ErrKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrDeadlineExceeded
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrDeadlineExceeded
	}
	if errors.Is(err, context.Canceled) {
		return domain.ErrOther
	}
	return domain.ErrTransport
}
