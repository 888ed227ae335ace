package products

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCoercesStringsAndNumbers(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"strings", `{"title":"T","description":"D","price":"19.90","image_url":"u","category_id":"3"}`},
		{"numbers", `{"title":"T","description":"D","price":19.9,"image_url":"u","category_id":3}`},
		{"float id", `{"title":"T","description":"D","price":"19.9","image_url":"u","category_id":"3.0"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in Input
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))

			rec, err := in.Normalize()
			require.NoError(t, err)
			assert.Equal(t, 19.9, rec.Price)
			assert.Equal(t, int64(3), rec.CategoryID)
			assert.Nil(t, rec.ID)
		})
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want error
	}{
		{"missing price", Input{CategoryID: "1"}, ErrInvalidPrice},
		{"zero price", Input{Price: "0", CategoryID: "1"}, ErrInvalidPrice},
		{"negative price", Input{Price: "-2", CategoryID: "1"}, ErrInvalidPrice},
		{"missing category", Input{Price: "1"}, ErrInvalidCategoryID},
		{"word category", Input{Price: "1", CategoryID: "abc"}, ErrInvalidCategoryID},
		{"category overflows int64", Input{Price: "1", CategoryID: "1e30"}, ErrInvalidCategoryID},
		{"negative category", Input{Price: "1", CategoryID: "-4"}, ErrInvalidCategoryID},
		{"zero category", Input{Price: "1", CategoryID: "0"}, ErrInvalidCategoryID},
		{"fraction below one", Input{Price: "1", CategoryID: "0.5"}, ErrInvalidCategoryID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Normalize()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRecordJSONShape(t *testing.T) {
	in := Input{Title: "Mug", Description: "Red mug", Price: "9.5", ImageURL: "http://x/y.jpg", CategoryID: "1"}
	rec, err := in.Normalize()
	require.NoError(t, err)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Mug","description":"Red mug","price":9.5,"image_url":"http://x/y.jpg","category_id":1}`, string(out))
}
