package api

import (
	"context"
)

// MockAPIGenerator records the formatted path of the last client it built.
type MockAPIGenerator struct {
	MockClient MockAPIClient
	LastPath   string
}

func (m *MockAPIGenerator) New(path string, args ...any) Client {
	m.LastPath = formatPath(path, args...)
	m.MockClient.Path = m.LastPath
	return &m.MockClient
}

type MockAPIClient struct {
	Path        string
	LastQuery   Parameter
	LastBody    Body
	LastHeaders map[string]string

	HeaderFunc func(name, value string) Client
	QueryFunc  func(query Parameter) Client
	BodyFunc   func(body Body) Client
	POSTFunc   func(ctx context.Context, opts ...Opt) (*Response, error)
	GETFunc    func(ctx context.Context, opts ...Opt) (*Response, error)
}

func (c *MockAPIClient) Header(name, value string) Client {
	if c.LastHeaders == nil {
		c.LastHeaders = map[string]string{}
	}
	c.LastHeaders[name] = value

	if c.HeaderFunc != nil {
		return c.HeaderFunc(name, value)
	}

	return c
}

func (c *MockAPIClient) Query(query Parameter) Client {
	c.LastQuery = query
	if c.QueryFunc != nil {
		return c.QueryFunc(query)
	}

	return c
}

func (c *MockAPIClient) Body(body Body) Client {
	c.LastBody = body
	if c.BodyFunc != nil {
		return c.BodyFunc(body)
	}

	return c
}

func (c *MockAPIClient) POST(ctx context.Context, opts ...Opt) (*Response, error) {
	if c.POSTFunc != nil {
		return c.POSTFunc(ctx, opts...)
	}

	panic("not implemented")
}

func (c *MockAPIClient) GET(ctx context.Context, opts ...Opt) (*Response, error) {
	if c.GETFunc != nil {
		return c.GETFunc(ctx, opts...)
	}

	panic("not implemented")
}
