//	mockgen -source=internal/adapter/http/handler/webhook_handler.go -destination=internal/adapter/http/handler/mocks/mock_webhook.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	usecase "github.com/finbridge/remit/internal/usecase"
)

// MockTransactionFailer is a mock of TransactionFailer interface.
type MockTransactionFailer struct {
	ctrl     *gomock.Controller
	recorder *MockTransactionFailerMockRecorder
	isgomock struct{}
}

// MockTransactionFailerMockRecorder is the mock recorder for MockTransactionFailer.
type MockTransactionFailerMockRecorder struct {
	mock *MockTransactionFailer
}

// NewMockTransactionFailer creates a new mock instance.
func NewMockTransactionFailer(ctrl *gomock.Controller) *MockTransactionFailer {
	mock := &MockTransactionFailer{ctrl: ctrl}
	mock.recorder = &MockTransactionFailerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTransactionFailer) EXPECT() *MockTransactionFailerMockRecorder {
	return m.recorder
}

// MarkFailed mocks base method.
func (m *MockTransactionFailer) MarkFailed(ctx context.Context, id, reason string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MarkFailed", ctx, id, reason)
	ret0, _ := ret[0].(error)
	return ret0
}

// MarkFailed indicates an expected call of MarkFailed.
func (mr *MockTransactionFailerMockRecorder) MarkFailed(ctx, id, reason any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MarkFailed", reflect.TypeOf((*MockTransactionFailer)(nil).MarkFailed), ctx, id, reason)
}

// MockQueue is a mock of Queue interface.
type MockQueue struct {
	ctrl     *gomock.Controller
	recorder *MockQueueMockRecorder
	isgomock struct{}
}

// MockQueueMockRecorder is the mock recorder for MockQueue.
type MockQueueMockRecorder struct {
	mock *MockQueue
}

// NewMockQueue creates a new mock instance.
func NewMockQueue(ctrl *gomock.Controller) *MockQueue {
	mock := &MockQueue{ctrl: ctrl}
	mock.recorder = &MockQueueMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockQueue) EXPECT() *MockQueueMockRecorder {
	return m.recorder
}

// Enqueue mocks base method.
func (m *MockQueue) Enqueue(ctx context.Context, kind string, payload usecase.JobPayload, opts usecase.EnqueueOptions) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Enqueue", ctx, kind, payload, opts)
	ret0, _ := ret[0].(error)
	return ret0
}

// Enqueue indicates an expected call of Enqueue.
func (mr *MockQueueMockRecorder) Enqueue(ctx, kind, payload, opts any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Enqueue", reflect.TypeOf((*MockQueue)(nil).Enqueue), ctx, kind, payload, opts)
}

// Consume mocks base method.
func (m *MockQueue) Consume(ctx context.Context, kind string, concurrency int, handler usecase.JobHandler) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Consume", ctx, kind, concurrency, handler)
	ret0, _ := ret[0].(error)
	return ret0
}

// Consume indicates an expected call of Consume.
func (mr *MockQueueMockRecorder) Consume(ctx, kind, concurrency, handler any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Consume", reflect.TypeOf((*MockQueue)(nil).Consume), ctx, kind, concurrency, handler)
}

// MockPaymentGateway is a mock of PaymentGateway interface.
type MockPaymentGateway struct {
	ctrl     *gomock.Controller
	recorder *MockPaymentGatewayMockRecorder
	isgomock struct{}
}

// MockPaymentGatewayMockRecorder is the mock recorder for MockPaymentGateway.
type MockPaymentGatewayMockRecorder struct {
	mock *MockPaymentGateway
}

// NewMockPaymentGateway creates a new mock instance.
func NewMockPaymentGateway(ctrl *gomock.Controller) *MockPaymentGateway {
	mock := &MockPaymentGateway{ctrl: ctrl}
	mock.recorder = &MockPaymentGatewayMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPaymentGateway) EXPECT() *MockPaymentGatewayMockRecorder {
	return m.recorder
}

// InitiatePayment mocks base method.
func (m *MockPaymentGateway) InitiatePayment(ctx context.Context, input usecase.InitiatePaymentInput) (*usecase.PaymentInitiation, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InitiatePayment", ctx, input)
	ret0, _ := ret[0].(*usecase.PaymentInitiation)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// InitiatePayment indicates an expected call of InitiatePayment.
func (mr *MockPaymentGatewayMockRecorder) InitiatePayment(ctx, input any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InitiatePayment", reflect.TypeOf((*MockPaymentGateway)(nil).InitiatePayment), ctx, input)
}

// VerifyWebhookSignature mocks base method.
func (m *MockPaymentGateway) VerifyWebhookSignature(payload []byte, signatureHeader string) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "VerifyWebhookSignature", payload, signatureHeader)
	ret0, _ := ret[0].(bool)
	return ret0
}

// VerifyWebhookSignature indicates an expected call of VerifyWebhookSignature.
func (mr *MockPaymentGatewayMockRecorder) VerifyWebhookSignature(payload, signatureHeader any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "VerifyWebhookSignature", reflect.TypeOf((*MockPaymentGateway)(nil).VerifyWebhookSignature), payload, signatureHeader)
}
