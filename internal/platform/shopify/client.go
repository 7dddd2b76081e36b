package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/qrcodes-backend/internal/domain"
	"github.com/yungbote/qrcodes-backend/internal/observability"
	"github.com/yungbote/qrcodes-backend/internal/platform/ctxutil"
	"github.com/yungbote/qrcodes-backend/internal/platform/httpx"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/platform/pointers"
)

const DefaultAPIVersion = "2024-10"

// ErrCatalog wraps every failure talking to the Admin API.
var ErrCatalog = errors.New("shopify catalog")

var ErrNoShop = errors.New("shopify: no shop in request context")

type Config struct {
	APIVersion string        `yaml:"api_version"`
	Timeout    time.Duration `yaml:"timeout"`
	// BaseURL replaces https://{shop} when set (tests, proxies).
	BaseURL string `yaml:"base_url"`
}

// Client is the request-scoped Admin GraphQL client. The shop is taken from
// the request context, which the shop session middleware populates.
type Client struct {
	log        *logger.Logger
	cfg        Config
	tokens     TokenSource
	httpClient *http.Client
	tracer     trace.Tracer
}

func New(log *logger.Logger, cfg Config, tokens TokenSource) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source required")
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{
		log:        log.With("client", "ShopifyAdminClient"),
		cfg:        cfg,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tracer:     otel.Tracer("shopify"),
	}, nil
}

func (c *Client) endpoint(shop string) string {
	if c.cfg.BaseURL != "" {
		return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.cfg.BaseURL, c.cfg.APIVersion)
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shop, c.cfg.APIVersion)
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLErr    `json:"errors"`
}

type GraphQLErr struct {
	Message string `json:"message"`
}

// GraphQLError carries the errors[] array of a 200 response.
type GraphQLError struct {
	Errors []GraphQLErr
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

func (e *GraphQLError) Unwrap() error { return ErrCatalog }

// Do runs one GraphQL operation against the shop in ctx and decodes data into out.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
	shop := ctxutil.Shop(ctx)
	if shop == "" {
		return fmt.Errorf("%w: %w", ErrCatalog, ErrNoShop)
	}
	token, err := c.tokens.AccessToken(ctx, shop)
	if err != nil {
		return fmt.Errorf("%w: access token: %w", ErrCatalog, err)
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(shop), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCatalog, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %w", ErrCatalog, httpx.NewStatusError("shopify", resp))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrCatalog, err)
	}
	var gr graphQLResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrCatalog, err)
	}
	if len(gr.Errors) > 0 {
		return &GraphQLError{Errors: gr.Errors}
	}
	if out == nil || len(gr.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %w", ErrCatalog, err)
	}
	return nil
}

const productQuery = `query supplementQRCode($id: ID!) {
  product(id: $id) {
    title
    images(first: 1) {
      nodes {
        altText
        url
      }
    }
  }
}`

type productData struct {
	Product *struct {
		Title  *string `json:"title"`
		Images struct {
			Nodes []struct {
				AltText *string `json:"altText"`
				URL     string  `json:"url"`
			} `json:"nodes"`
		} `json:"images"`
	} `json:"product"`
}

// QueryProduct fetches a product's title and first image. A product that no
// longer exists yields a Product with a nil Title.
func (c *Client) QueryProduct(ctx context.Context, productID string) (p *domain.Product, err error) {
	ctx, span := c.tracer.Start(ctx, "shopify.QueryProduct", trace.WithAttributes(attribute.String("shopify.product_id", productID)))
	start := time.Now()
	defer func() {
		if m := observability.Current(); m != nil {
			m.ObserveCatalog(observability.StatusLabel(err), time.Since(start))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.log.Warn("Product query failed", "product_id", productID, "error", err)
		}
		span.End()
	}()

	var data productData
	if err := c.Do(ctx, productQuery, map[string]any{"id": productID}, &data); err != nil {
		return nil, err
	}

	out := &domain.Product{}
	if data.Product == nil || data.Product.Title == nil {
		return out, nil
	}
	out.Title = data.Product.Title
	for _, n := range data.Product.Images.Nodes {
		out.Images = append(out.Images, domain.ProductImage{URL: n.URL, AltText: pointers.Deref(n.AltText)})
	}
	return out, nil
}
