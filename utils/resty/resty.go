package resty

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient : builds requests bound to a context
type RestyClient interface {
	MakeRequest(ctx context.Context, header map[string]string) ReadyRestyReq
}

type ReadyRestyReq interface {
	Get(url string, queryParams ...QueryParam) (*resty.Response, error)
}

type QueryParam struct {
	Key   string
	Value any
}

// Options : transport settings of the default client
type Options struct {
	Trace      bool
	RetryCount int
	Timeout    time.Duration
}

func NewDefaultRestyClient(opts Options) RestyClient {
	restyClient := defaultRestyClient{}
	restyClient.setupClient(opts)
	return &restyClient
}

func NewMockRestyClient(mockFuncs []MockFunc) RestyClient {
	mocks := make(map[string]map[string]MockFunc)
	for _, mockFunc := range mockFuncs {
		if _, ok := mocks[mockFunc.Method]; !ok {
			mocks[mockFunc.Method] = make(map[string]MockFunc)
		}
		mocks[mockFunc.Method][mockFunc.Path] = mockFunc
	}
	return &mockRestyClient{mocks: mocks}
}
