package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dependify/DemoeCRM/models"
)

func TestCreateConvert(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvertService(db, newTestConfig())

	convert, err := svc.CreateConvert(testCtx(), &CreateConvertRequest{
		FirstName: "  Amina ",
		LastName:  "Bello",
		Phone:     "08087654321",
		City:      "Kano",
		State:     "Kano",
		Source:    models.SourceCrusade,
	})
	require.NoError(t, err)
	assert.Equal(t, "Amina", convert.FirstName, "names are trimmed")
	assert.Equal(t, models.StageNew, convert.Stage)
	assert.Equal(t, models.SourceCrusade, convert.Source)
	assert.Nil(t, convert.HealthScore)
	assert.Nil(t, convert.LastActivityAt)
}

func TestCreateConvertDefaultsSource(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvertService(db, newTestConfig())

	convert, err := svc.CreateConvert(testCtx(), &CreateConvertRequest{
		FirstName: "Tunde",
		LastName:  "Adebayo",
		Phone:     "07012345678",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceService, convert.Source)
}

func TestCreateConvertInvalidPhone(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvertService(db, newTestConfig())

	for _, phone := range []string{"", "0803123456", "080312345678", "8031234567", "+2348031234567", "0803123456a"} {
		_, err := svc.CreateConvert(testCtx(), &CreateConvertRequest{
			FirstName: "Bad",
			LastName:  "Phone",
			Phone:     phone,
		})
		require.ErrorIs(t, err, ErrInvalidState, "phone %q", phone)
	}
}

func TestCreateConvertInvalidSource(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvertService(db, newTestConfig())

	_, err := svc.CreateConvert(testCtx(), &CreateConvertRequest{
		FirstName: "Bad",
		LastName:  "Source",
		Phone:     "08031234567",
		Source:    "facebook",
	})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateConvertPartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvertService(db, newTestConfig())
	convert := createTestConvert(t, db)

	city := "Abuja"
	notes := "Moved for work"
	updated, err := svc.UpdateConvert(testCtx(), convert.ID, &UpdateConvertRequest{
		City:  &city,
		Notes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "Abuja", updated.City)
	assert.Equal(t, "Moved for work", updated.Notes)
	// Untouched fields survive
	assert.Equal(t, "Chinedu", updated.FirstName)
	assert.Equal(t, "08031234567", updated.Phone)
}

func TestUpdateConvertInvalidPhone(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvertService(db, newTestConfig())
	convert := createTestConvert(t, db)

	phone := "12345"
	_, err := svc.UpdateConvert(testCtx(), convert.ID, &UpdateConvertRequest{Phone: &phone})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateConvertNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvertService(db, newTestConfig())

	city := "Lagos"
	_, err := svc.UpdateConvert(testCtx(), 9999, &UpdateConvertRequest{City: &city})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetConvertByIDNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvertService(db, newTestConfig())

	_, err := svc.GetConvertByID(testCtx(), 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllConvertsFilterAndSearch(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvertService(db, newTestConfig())

	seedReqs := []CreateConvertRequest{
		{FirstName: "Chinedu", LastName: "Okafor", Phone: "08031112222", Source: models.SourceService},
		{FirstName: "Amina", LastName: "Bello", Phone: "08033334444", Source: models.SourceCrusade},
		{FirstName: "Ngozi", LastName: "Okafor", Phone: "08035556666", Source: models.SourceOutreach},
	}
	for i := range seedReqs {
		_, err := svc.CreateConvert(testCtx(), &seedReqs[i])
		require.NoError(t, err)
	}

	converts, total, err := svc.GetAllConverts(testCtx(), ConvertFilter{Search: "okafor"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, converts, 2)

	converts, total, err = svc.GetAllConverts(testCtx(), ConvertFilter{Search: "0803333"}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, converts, 1)
	assert.Equal(t, "Amina", converts[0].FirstName)

	_, total, err = svc.GetAllConverts(testCtx(), ConvertFilter{Source: models.SourceCrusade}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = svc.GetAllConverts(testCtx(), ConvertFilter{Stage: models.StageNew}, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	_, _, err = svc.GetAllConverts(testCtx(), ConvertFilter{Stage: "unknown"}, 1, 10)
	require.Error(t, err)
}

func TestGetAllConvertsPagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewConvertService(db, newTestConfig())

	for i := 0; i < 5; i++ {
		_, err := svc.CreateConvert(testCtx(), &CreateConvertRequest{
			FirstName: "Person",
			LastName:  "Number",
			Phone:     "0803000000" + string(rune('0'+i)),
		})
		require.NoError(t, err)
	}

	converts, total, err := svc.GetAllConverts(testCtx(), ConvertFilter{}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, converts, 2)

	converts, _, err = svc.GetAllConverts(testCtx(), ConvertFilter{}, 3, 2)
	require.NoError(t, err)
	assert.Len(t, converts, 1)
}
