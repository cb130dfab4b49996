package resty

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
)

var ErrMockNotFound = errors.New("mock not found for the requested method and url")

type MockFuncResponse struct {
	StatusCode int
	Header     http.Header
	Body       any
}

type MockFunc struct {
	Method     string
	Path       string
	ResultBody func(ctx context.Context, header map[string]string, param ...QueryParam) (MockFuncResponse, error)
}

type mockRestyClient struct {
	mocks map[string]map[string]MockFunc
}

type mockReadyRestyReq struct {
	ctx    context.Context
	mocks  map[string]map[string]MockFunc
	header map[string]string
}

func (client *mockRestyClient) MakeRequest(ctx context.Context, header map[string]string) ReadyRestyReq {
	return &mockReadyRestyReq{ctx: ctx, mocks: client.mocks, header: header}
}

func (m *mockReadyRestyReq) Get(url string, queryParams ...QueryParam) (*resty.Response, error) {
	mockFunc, ok := m.mocks[http.MethodGet][url]
	if !ok {
		return nil, ErrMockNotFound
	}

	resultBody, givenError := mockFunc.ResultBody(m.ctx, m.header, queryParams...)
	if err := m.ctx.Err(); err != nil {
		return nil, err
	}
	resultResponse, createErr := CreateMockResponse(resultBody)
	if createErr != nil {
		return nil, createErr
	}
	return resultResponse, givenError
}

// CreateMockResponse : resty response carrying Body as JSON, 200 unless StatusCode is set
func CreateMockResponse(given MockFuncResponse) (*resty.Response, error) {
	byteGivenBody, marshalErr := json.Marshal(given.Body)
	if marshalErr != nil {
		return nil, marshalErr
	}

	statusCode := given.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	rawResponse := &http.Response{
		Status:     http.StatusText(statusCode),
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewReader(byteGivenBody)),
		Header:     given.Header,
	}
	restyResp := &resty.Response{
		RawResponse: rawResponse,
		Request:     &resty.Request{},
	}
	restyResp.SetBody(byteGivenBody)
	return restyResp, nil
}
