package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"barterhub/internal/apperrors"
	"barterhub/internal/models"
	"barterhub/internal/repositories/interfaces"
	"barterhub/internal/services"
	"barterhub/internal/utils"
)

type stubSkillService struct {
	services.SkillService

	created  *services.CreateSkillInput
	filter   interfaces.SkillListFilter
	viewer   services.SkillViewer
	verified models.VerificationStatus
}

func (s *stubSkillService) CreateSkill(ctx context.Context, ownerID primitive.ObjectID, input services.CreateSkillInput) (*models.Skill, error) {
	s.created = &input
	return &models.Skill{
		ID:                 primitive.NewObjectID(),
		Title:              input.Title,
		OfferedBy:          ownerID,
		CategoryID:         input.CategoryID,
		Level:              input.Level,
		VerificationStatus: models.VerificationStatusPending,
		IsActive:           true,
	}, nil
}

func (s *stubSkillService) ListSkills(ctx context.Context, filter interfaces.SkillListFilter, viewer services.SkillViewer, params *utils.PaginationParams) ([]*models.Skill, int64, error) {
	s.filter = filter
	s.viewer = viewer
	return []*models.Skill{{ID: primitive.NewObjectID(), Title: "Guitar"}}, 1, nil
}

func (s *stubSkillService) SetVerificationStatus(ctx context.Context, skillID, adminID primitive.ObjectID, status models.VerificationStatus) (*models.Skill, error) {
	s.verified = status
	return &models.Skill{ID: skillID, VerificationStatus: status}, nil
}

func TestCreateSkillHandler(t *testing.T) {
	svc := &stubSkillService{}
	h := NewSkillHandler(svc)
	ownerID := primitive.NewObjectID()
	categoryID := primitive.NewObjectID()

	router := gin.New()
	router.POST("/skills", withUser(ownerID, models.UserRoleUser), h.CreateSkill)

	payload := `{"title":"<i>Guitar</i> basics","category_id":"` + categoryID.Hex() + `","level":"advanced","delivery_mode":"in-person"}`
	rec, resp := serve(t, router, http.MethodPost, "/skills", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, svc.created)
	assert.Equal(t, "Guitar basics", svc.created.Title)
	assert.Equal(t, categoryID, svc.created.CategoryID)
	assert.Equal(t, models.SkillLevelAdvanced, svc.created.Level)
	assert.Equal(t, models.DeliveryModeInPerson, svc.created.DeliveryMode)

	var skill models.Skill
	require.NoError(t, json.Unmarshal(resp.Data, &skill))
	assert.Equal(t, ownerID, skill.OfferedBy)
	assert.Equal(t, models.VerificationStatusPending, skill.VerificationStatus)
}

func TestCreateSkillHandlerValidation(t *testing.T) {
	svc := &stubSkillService{}
	h := NewSkillHandler(svc)

	router := gin.New()
	router.POST("/skills", withUser(primitive.NewObjectID(), models.UserRoleUser), h.CreateSkill)

	rec, resp := serve(t, router, http.MethodPost, "/skills", `{"title":"Guitar","category_id":"nope","level":"guru"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(apperrors.KindValidation), resp.Error.Code)
	assert.Equal(t, utils.ErrValidationFailed, resp.Error.Message)

	details, ok := resp.Error.Details.([]interface{})
	require.True(t, ok, "details should list field errors")
	fields := make([]string, 0, len(details))
	for _, detail := range details {
		fields = append(fields, detail.(map[string]interface{})["field"].(string))
	}
	assert.ElementsMatch(t, []string{"CategoryID", "Level"}, fields)
	assert.Nil(t, svc.created)
}

func TestListSkillsHandler(t *testing.T) {
	categoryID := primitive.NewObjectID()
	query := "/skills?category=" + categoryID.Hex() + "&level=beginner&show_pending=true&search=guitar"

	t.Run("admin", func(t *testing.T) {
		svc := &stubSkillService{}
		adminID := primitive.NewObjectID()
		router := gin.New()
		router.GET("/skills", withUser(adminID, models.UserRoleAdmin), NewSkillHandler(svc).ListSkills)

		rec, resp := serve(t, router, http.MethodGet, query, "")
		require.Equal(t, http.StatusOK, rec.Code)

		require.NotNil(t, svc.filter.CategoryID)
		assert.Equal(t, categoryID, *svc.filter.CategoryID)
		assert.Nil(t, svc.filter.OfferedBy)
		assert.Equal(t, models.SkillLevelBeginner, svc.filter.Level)
		assert.Equal(t, "guitar", svc.filter.Search)
		assert.True(t, svc.filter.IncludeUnverified)
		assert.Equal(t, services.SkillViewer{UserID: adminID, IsAdmin: true}, svc.viewer)

		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Pagination.Total)
	})

	t.Run("anonymous", func(t *testing.T) {
		svc := &stubSkillService{}
		router := gin.New()
		router.GET("/skills", NewSkillHandler(svc).ListSkills)

		rec, _ := serve(t, router, http.MethodGet, query, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, services.SkillViewer{}, svc.viewer)
	})

	t.Run("bad filter", func(t *testing.T) {
		svc := &stubSkillService{}
		router := gin.New()
		router.GET("/skills", NewSkillHandler(svc).ListSkills)

		rec, resp := serve(t, router, http.MethodGet, "/skills?delivery_mode=carrier-pigeon", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, string(apperrors.KindValidation), resp.Error.Code)
	})
}

func TestVerifySkillHandler(t *testing.T) {
	svc := &stubSkillService{}
	router := gin.New()
	router.PUT("/admin/skills/:id/verification", withUser(primitive.NewObjectID(), models.UserRoleAdmin), NewSkillHandler(svc).VerifySkill)
	path := "/admin/skills/" + primitive.NewObjectID().Hex() + "/verification"

	rec, _ := serve(t, router, http.MethodPut, path, `{"status":"approved"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.VerificationStatusApproved, svc.verified)

	rec, _ = serve(t, router, http.MethodPut, path, `{"status":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
