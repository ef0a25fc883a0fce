package macros

import (
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
)

func TestResolveMacros(t *testing.T) {
	endpointTemplate := template.Must(template.New("endpointTemplate").Parse("//{{.Host}}/{{.AdAuctionID}}/{{.AdUnitID}}/jita.js"))

	testCases := []struct {
		description    string
		params         interface{}
		expectedResult string
		expectedErr    bool
	}{
		{
			description: "all-set",
			params: struct{ Host, AdAuctionID, AdUnitID string }{
				Host:        "delivery.1worldonline.com",
				AdAuctionID: "100",
				AdUnitID:    "200",
			},
			expectedResult: "//delivery.1worldonline.com/100/200/jita.js",
		},
		{
			description:    "empty-fields",
			params:         struct{ Host, AdAuctionID, AdUnitID string }{},
			expectedResult: "/////jita.js",
		},
		{
			description: "missing-field",
			params:      struct{ Host string }{Host: "example.com"},
			expectedErr: true,
		},
	}

	for _, test := range testCases {
		result, err := ResolveMacros(endpointTemplate, test.params)
		if test.expectedErr {
			assert.Error(t, err, test.description)
			continue
		}
		assert.NoError(t, err, test.description)
		assert.Equal(t, test.expectedResult, result, test.description)
	}
}
