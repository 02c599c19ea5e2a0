package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestFilters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		wantErr error
	}{
		{name: "defaults", filters: DefaultFilters()},
		{name: "narrow range", filters: Filters{MinAge: 25, MaxAge: 25}},
		{name: "min below floor", filters: Filters{MinAge: 17, MaxAge: 30}, wantErr: ErrInvalidAge},
		{name: "max above ceiling", filters: Filters{MinAge: 18, MaxAge: 100}, wantErr: ErrInvalidAge},
		{name: "inverted", filters: Filters{MinAge: 40, MaxAge: 30}, wantErr: ErrInvalidAgeRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFilters_Normalize(t *testing.T) {
	got := Filters{MaxAge: 30, Location: "  Oslo ", Gender: " Male"}.Normalize()
	assert.Equal(t, Filters{MinAge: MinAge, MaxAge: 30, Location: "Oslo", Gender: "male"}, got)
}

func TestProfile_Helpers(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &Profile{UserID: 7, Name: "Kim", Age: 30, Location: "Seoul", CreatedAt: created}

	assert.True(t, p.IsComplete())
	assert.Equal(t, "user_7", p.ContactHandle())
	p.Username = "@kim"
	assert.Equal(t, "@kim", p.ContactHandle())

	assert.Equal(t, DefaultFilters(), p.Filters())
	p.Preferences = datatypes.NewJSONType(Filters{MinAge: 20, MaxAge: 35})
	assert.Equal(t, Filters{MinAge: 20, MaxAge: 35}, p.Filters())

	assert.InDelta(t, 1.0, p.AgeInYears(created.Add(365*24*time.Hour)), 0.001)

	p.Location = ""
	assert.False(t, p.IsComplete())
}
