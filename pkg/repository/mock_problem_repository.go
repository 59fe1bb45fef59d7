package repository

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/leetrack/leetrack-common/pkg/domain"
)

// MockProblemRepository is a testify mock of ProblemRepository.
type MockProblemRepository struct {
	mock.Mock
}

// NewMockProblemRepository creates a new mock repository.
func NewMockProblemRepository() *MockProblemRepository {
	return &MockProblemRepository{}
}

func (m *MockProblemRepository) ListProblems(ctx context.Context) ([]*domain.Problem, error) {
	args := m.Called(ctx)
	problems, _ := args.Get(0).([]*domain.Problem)
	return problems, args.Error(1)
}

func (m *MockProblemRepository) FindProblemsByName(ctx context.Context, name string) ([]*domain.Problem, error) {
	args := m.Called(ctx, name)
	problems, _ := args.Get(0).([]*domain.Problem)
	return problems, args.Error(1)
}

func (m *MockProblemRepository) InsertProblem(ctx context.Context, fields domain.ProblemFields) (*domain.Problem, error) {
	args := m.Called(ctx, fields)
	problem, _ := args.Get(0).(*domain.Problem)
	return problem, args.Error(1)
}

func (m *MockProblemRepository) UpdateProblem(ctx context.Context, id string, update domain.ProblemUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockProblemRepository) ListGroups(ctx context.Context) ([]domain.Group, error) {
	args := m.Called(ctx)
	groups, _ := args.Get(0).([]domain.Group)
	return groups, args.Error(1)
}
