package passback

import (
	"testing"

	"github.com/predictinteractive/predict-server/openrtb_ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHouseAd(t *testing.T) {
	generator := NewGenerator(Config{})

	testCases := []struct {
		description string
		passback    *string
		predRA      bool
		expectedURL string
	}{
		{
			description: "no-passback",
			expectedURL: "//content.predictinteractive.com/images/index.php?w=300&h=250&v=42",
		},
		{
			description: "raw-passback-appended-verbatim",
			passback:    strPtr("subid=abc&t=%20x"),
			expectedURL: "//content.predictinteractive.com/images/index.php?w=300&h=250&v=42&subid=abc&t=%20x",
		},
		{
			description: "empty-passback-still-appends-separator",
			passback:    strPtr(""),
			expectedURL: "//content.predictinteractive.com/images/index.php?w=300&h=250&v=42&",
		},
		{
			description: "pred-ra",
			passback:    strPtr("a=1"),
			predRA:      true,
			expectedURL: "//content.predictinteractive.com/images/index.php?w=300&h=250&v=42&a=1&pred_ra=yes",
		},
	}

	for _, test := range testCases {
		url, err := generator.HouseAd(300, 250, 42, test.passback, test.predRA)
		require.NoError(t, err, test.description)
		assert.Equal(t, test.expectedURL, url, test.description)
	}
}

func TestAdSense(t *testing.T) {
	ad, err := NewGenerator(Config{}).AdSense(728, 90, openrtb_ext.ExtImpPredictAdSense{DataAdSlot: "1234567"})
	require.NoError(t, err)

	assert.Contains(t, ad, `window.google_ad_client = "ca-pub-5220182163543194";`)
	assert.Contains(t, ad, `window.google_ad_slot = "1234567";`)
	assert.Contains(t, ad, `window.google_ad_width = 728;`)
	assert.Contains(t, ad, `window.google_ad_height = 90;`)
	assert.Contains(t, ad, `src="https://pagead2.googlesyndication.com/pagead/show_ads.js"`)
}

func TestOneWorld(t *testing.T) {
	ad, err := NewGenerator(Config{}).OneWorld(openrtb_ext.ExtImpPredictOneWorld{AdAuctionID: "auc1", AdUnitID: "unit9"})
	require.NoError(t, err)

	assert.Contains(t, ad, `<script defer>`)
	assert.Contains(t, ad, `dv.id = 'RTK_unit9';`)
	assert.Contains(t, ad, `window.top.document.location.protocol === 'http:'`)
	assert.Contains(t, ad, `+ '//delivery.1worldonline.com/auc1/unit9/jita.js';`)
}

func TestAdsterra(t *testing.T) {
	ad, err := NewGenerator(Config{}).Adsterra(160, 600, openrtb_ext.ExtImpPredictAdsterra{Key: "abc123"})
	require.NoError(t, err)

	assert.Contains(t, ad, `'key' : 'abc123',`)
	assert.Contains(t, ad, `'format' : 'iframe',`)
	assert.Contains(t, ad, `'height' : 600,`)
	assert.Contains(t, ad, `'width' : 160,`)
	assert.Contains(t, ad, `(location.protocol === 'https:' ? 's' : '') + '://www.displayformatrevenue.com/abc123/invoke.js"`)
}

func TestAmity(t *testing.T) {
	ad, err := NewGenerator(Config{}).Amity(openrtb_ext.ExtImpPredictAmity{AvPublisherID: "pub7", AvTagID: "tag3"})
	require.NoError(t, err)

	assert.Contains(t, ad, `id="AVtag3"`)
	assert.Contains(t, ad, `src="https://tg1.amitydigital.io/api/adserver/spt?AV_TAGID=tag3&AV_PUBLISHERID=pub7"`)
	assert.Contains(t, ad, "async")
}

func TestMediaForce(t *testing.T) {
	url, err := NewGenerator(Config{}).MediaForce()
	require.NoError(t, err)
	assert.Equal(t, "//serve2.mediaforce.com/?tagtype=JS&pid=212&subid=[predint]&cm=&enc=", url)

	url, err = NewGenerator(Config{MediaForcePID: "300", MediaForceSubID: "[test]"}).MediaForce()
	require.NoError(t, err)
	assert.Equal(t, "//serve2.mediaforce.com/?tagtype=JS&pid=300&subid=[test]&cm=&enc=", url)
}

func TestGeneratorsAreDeterministic(t *testing.T) {
	generator := NewGenerator(Config{})

	render := func() []string {
		amity, _ := generator.Amity(openrtb_ext.ExtImpPredictAmity{AvPublisherID: "p", AvTagID: "t"})
		adSense, _ := generator.AdSense(300, 250, openrtb_ext.ExtImpPredictAdSense{DataAdSlot: "s"})
		oneWorld, _ := generator.OneWorld(openrtb_ext.ExtImpPredictOneWorld{AdAuctionID: "a", AdUnitID: "u"})
		adsterra, _ := generator.Adsterra(300, 250, openrtb_ext.ExtImpPredictAdsterra{Key: "k"})
		return []string{amity, adSense, oneWorld, adsterra}
	}

	assert.Equal(t, render(), render())
}

func TestGeneratorsDoNotValidate(t *testing.T) {
	generator := NewGenerator(Config{})

	ad, err := generator.OneWorld(openrtb_ext.ExtImpPredictOneWorld{})
	require.NoError(t, err)
	assert.Contains(t, ad, `+ '//delivery.1worldonline.com///jita.js';`)

	ad, err = generator.Amity(openrtb_ext.ExtImpPredictAmity{})
	require.NoError(t, err)
	assert.Contains(t, ad, `?AV_TAGID=&AV_PUBLISHERID=`)
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{AdsterraHost: "ads.example.com"}.WithDefaults()

	expected := DefaultConfig()
	expected.AdsterraHost = "ads.example.com"
	assert.Equal(t, expected, cfg)
	assert.Equal(t, expected, NewGenerator(Config{AdsterraHost: "ads.example.com"}).Config())
}

func strPtr(s string) *string {
	return &s
}
