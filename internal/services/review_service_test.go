package services

import (
	"testing"

	"freelancehub/internal/models"
	"freelancehub/internal/repositories"
	"freelancehub/internal/services/dto"
	"freelancehub/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewService() ReviewService {
	userRepo, projectRepo, _, _, _ := newRepos()
	return NewReviewService(repositories.NewReviewRepository(), projectRepo, userRepo)
}

func TestCreateReviewUpdatesRating(t *testing.T) {
	db := newTestDB(t)
	svc := newReviewService()

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)

	projectA := createProject(t, db, client.ID, models.ProjectStatusCompleted)
	assignCompleted(t, db, projectA, freelancer.ID)
	projectB := createProject(t, db, client.ID, models.ProjectStatusCompleted)
	assignCompleted(t, db, projectB, freelancer.ID)

	review, err := svc.Create(db, client.ID, projectA.ID, &dto.CreateReviewRequest{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, freelancer.ID, review.RevieweeID)

	_, err = svc.Create(db, client.ID, projectB.ID, &dto.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	var got models.User
	require.NoError(t, db.First(&got, "id = ?", freelancer.ID).Error)
	assert.InDelta(t, 4.5, got.Rating, 0.001)
	assert.Equal(t, 2, got.ReviewCount)
}

func TestCreateReviewFreelancerReviewsClient(t *testing.T) {
	db := newTestDB(t)
	svc := newReviewService()

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusCompleted)
	assignCompleted(t, db, project, freelancer.ID)

	review, err := svc.Create(db, freelancer.ID, project.ID, &dto.CreateReviewRequest{Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, client.ID, review.RevieweeID)
}

func TestCreateReviewGuards(t *testing.T) {
	db := newTestDB(t)
	svc := newReviewService()

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	stranger := createUser(t, db, models.UserRoleFreelancer)

	// not completed yet
	active := createProject(t, db, client.ID, models.ProjectStatusInProgress)
	assignFreelancer(t, db, active, freelancer.ID)
	_, err := svc.Create(db, client.ID, active.ID, &dto.CreateReviewRequest{Rating: 5})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)

	done := createProject(t, db, client.ID, models.ProjectStatusCompleted)
	assignCompleted(t, db, done, freelancer.ID)

	// out-of-range rating
	_, err = svc.Create(db, client.ID, done.ID, &dto.CreateReviewRequest{Rating: 6})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)

	// non-participant
	_, err = svc.Create(db, stranger.ID, done.ID, &dto.CreateReviewRequest{Rating: 5})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)

	// one review per reviewer per project
	_, err = svc.Create(db, client.ID, done.ID, &dto.CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	_, err = svc.Create(db, client.ID, done.ID, &dto.CreateReviewRequest{Rating: 2})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAlreadyExists, appErr.Code)
}

func TestListReviews(t *testing.T) {
	db := newTestDB(t)
	svc := newReviewService()

	client := createUser(t, db, models.UserRoleClient)
	freelancer := createUser(t, db, models.UserRoleFreelancer)
	project := createProject(t, db, client.ID, models.ProjectStatusCompleted)
	assignCompleted(t, db, project, freelancer.ID)

	_, err := svc.Create(db, client.ID, project.ID, &dto.CreateReviewRequest{Rating: 4, Comment: "solid"})
	require.NoError(t, err)

	resp, err := svc.ListForUser(db, freelancer.ID, 20, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Total)
	assert.Equal(t, "solid", resp.Reviews[0].Comment)

	resp, err = svc.ListForUser(db, client.ID, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Total)
}
