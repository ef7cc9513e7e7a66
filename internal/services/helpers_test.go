package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"freelancehub/internal/auth"
	"freelancehub/internal/models"
	"freelancehub/internal/payments"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services/dto"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	auth.Init("test-secret", 60)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Proposal{},
		&models.Milestone{},
		&models.Message{},
		&models.Notification{},
		&models.Review{},
	))
	return db
}

// fixedClock always returns the same instant.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newFixedClock() Clock { return fixedClock{t: testNow} }

// fakePusher records pushes; Connected controls the reported delivery.
type fakePusher struct {
	mu        sync.Mutex
	Connected map[string]bool
	Pushes    []fakePush
}

type fakePush struct {
	UserID  string
	Payload any
}

func newFakePusher() *fakePusher {
	return &fakePusher{Connected: map[string]bool{}}
}

func (p *fakePusher) PushToUser(userID string, payload any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Pushes = append(p.Pushes, fakePush{UserID: userID, Payload: payload})
	return p.Connected[userID]
}

func (p *fakePusher) pushesFor(userID string) []fakePush {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []fakePush
	for _, push := range p.Pushes {
		if push.UserID == userID {
			out = append(out, push)
		}
	}
	return out
}

// fakeGateway is an in-memory payment gateway.
type fakeGateway struct {
	mu      sync.Mutex
	intents map[string]*payments.Intent
	seq     int
	// next CreateIntent/GetIntent call fails when set
	failCreate bool
	failGet    bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: map[string]*payments.Intent{}}
}

func (g *fakeGateway) CreateIntent(_ context.Context, params payments.CreateIntentParams) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCreate {
		return nil, fmt.Errorf("gateway unavailable")
	}
	g.seq++
	intent := &payments.Intent{
		ID:           fmt.Sprintf("pi_test_%d", g.seq),
		Status:       payments.IntentStatusPending,
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", g.seq),
		AmountMinor:  params.AmountMinor,
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failGet {
		return nil, fmt.Errorf("gateway unavailable")
	}
	intent, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such intent %q", id)
	}
	cp := *intent
	return &cp, nil
}

func (g *fakeGateway) succeed(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if intent, ok := g.intents[id]; ok {
		intent.Status = payments.IntentStatusSucceeded
	}
}

// fixture builders

func createUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	u := &models.User{
		Email:        fmt.Sprintf("%s-%d@example.com", role, time.Now().UnixNano()),
		PasswordHash: "x",
		Role:         role,
		Username:     fmt.Sprintf("%s_%d", role, time.Now().UnixNano()),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createProject(t *testing.T, db *gorm.DB, clientID string, status models.ProjectStatus) *models.Project {
	t.Helper()
	p := &models.Project{
		ClientID: clientID,
		Title:    "Build a data pipeline",
		Category: "engineering",
		Skills:   []string{"go", "postgres"},
		Budget:   decimal.NewFromInt(1000),
		Status:   status,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func createProposal(t *testing.T, db *gorm.DB, projectID, freelancerID string, status models.ProposalStatus, milestones ...models.ProposalMilestone) *models.Proposal {
	t.Helper()
	pr := &models.Proposal{
		ProjectID:      projectID,
		FreelancerID:   freelancerID,
		ProposedBudget: decimal.NewFromInt(900),
		Milestones:     milestones,
		Status:         status,
	}
	require.NoError(t, db.Create(pr).Error)
	return pr
}

func assignFreelancer(t *testing.T, db *gorm.DB, project *models.Project, freelancerID string) {
	t.Helper()
	project.FreelancerID = &freelancerID
	project.Status = models.ProjectStatusInProgress
	require.NoError(t, db.Save(project).Error)
}

// assignCompleted binds a freelancer without touching the status, for
// fixtures already created in a terminal state.
func assignCompleted(t *testing.T, db *gorm.DB, project *models.Project, freelancerID string) {
	t.Helper()
	project.FreelancerID = &freelancerID
	require.NoError(t, db.Save(project).Error)
}

func createMilestone(t *testing.T, db *gorm.DB, projectID string, status models.MilestoneStatus, amount decimal.Decimal) *models.Milestone {
	t.Helper()
	m := &models.Milestone{
		ProjectID: projectID,
		Title:     "First deliverable",
		Amount:    amount,
		Status:    status,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func submitReq(milestones ...models.ProposalMilestone) *dto.SubmitProposalRequest {
	return &dto.SubmitProposalRequest{
		CoverLetter:      "I can do this",
		ProposedBudget:   decimal.NewFromInt(900),
		ProposedTimeline: "4 weeks",
		Milestones:       milestones,
	}
}

func newRepos() (repositories.UserRepository, repositories.ProjectRepository, repositories.ProposalRepository, repositories.MilestoneRepository, repositories.NotificationRepository) {
	return repositories.NewUserRepository(),
		repositories.NewProjectRepository(),
		repositories.NewProposalRepository(),
		repositories.NewMilestoneRepository(),
		repositories.NewNotificationRepository()
}
