package testutil

import (
	"context"
	"testing"

	"github.com/USSTM/wms-backend/internal/storage"
	"github.com/stretchr/testify/mock"
)

// MockDocumentStore is a mock implementation of storage.DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func NewMockDocumentStore(t *testing.T) *MockDocumentStore {
	m := &MockDocumentStore{}
	m.Test(t)
	return m
}

func (m *MockDocumentStore) Get(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockDocumentStore) Put(ctx context.Context, name string, body []byte) error {
	return m.Called(ctx, name, body).Error(0)
}

func (m *MockDocumentStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// ExpectGet sets up expectation for Get
func (m *MockDocumentStore) ExpectGet(name string, data []byte, err error) *mock.Call {
	return m.On("Get", mock.Anything, name).Return(data, err)
}

// ExpectPut sets up expectation for Put with any body
func (m *MockDocumentStore) ExpectPut(name string, err error) *mock.Call {
	return m.On("Put", mock.Anything, name, mock.Anything).Return(err)
}

// ExpectPing sets up expectation for Ping
func (m *MockDocumentStore) ExpectPing(err error) *mock.Call {
	return m.On("Ping", mock.Anything).Return(err)
}

// MockPersister is a mock implementation of repository.Persister
type MockPersister struct {
	mock.Mock
}

func NewMockPersister(t *testing.T) *MockPersister {
	m := &MockPersister{}
	m.Test(t)
	return m
}

func (m *MockPersister) Persist(ctx context.Context, kind storage.Kind, body []byte) error {
	return m.Called(ctx, kind, body).Error(0)
}

// ExpectPersist sets up expectation for Persist of kind with any body
func (m *MockPersister) ExpectPersist(kind storage.Kind, err error) *mock.Call {
	return m.On("Persist", mock.Anything, kind, mock.Anything).Return(err)
}

var _ storage.DocumentStore = (*MockDocumentStore)(nil)
