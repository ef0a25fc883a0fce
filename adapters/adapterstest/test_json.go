package adapterstest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/predictinteractive/predict-server/adapters"
	"github.com/stretchr/testify/assert"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// RunJSONBidderTest is a helper method intended to unit test Bidders' adapters.
// It requires that:
//
//  1. Bidders communicate with external servers over HTTP.
//  2. The HTTP request bodies are legal JSON.
//
// Although the project does not require it, it's a good idea to use this helper.
//
// Bidders should create a folder (usually named "{bidder}test") and use this package
// to test their adapters. The directory should contain an "exemplary" and optionally a
// "supplemental" subdirectory. Exemplary files document the happy paths. Supplemental files
// cover the edge cases and error handling.
//
// Each file in those directories is a JSON fixture of the form:
//
//	{
//	  "mockBidRequest": { ... },
//	  "httpCalls": [{"expectedRequest": { ... }, "mockResponse": { ... }}],
//	  "expectedBidResponses": [{"currency": "USD", "bids": [{"bid": { ... }, "type": "banner"}]}],
//	  "expectedMakeRequestsErrors": [{"value": "...", "comparison": "literal"}],
//	  "expectedMakeBidsErrors": [{"value": "...", "comparison": "regex"}]
//	}
func RunJSONBidderTest(t *testing.T, rootDir string, bidder adapters.Bidder) {
	runTests(t, filepath.Join(rootDir, "exemplary"), bidder, false)
	runTests(t, filepath.Join(rootDir, "supplemental"), bidder, true)
}

func runTests(t *testing.T, directory string, bidder adapters.Bidder, allowErrors bool) {
	t.Helper()

	entries, err := os.ReadDir(directory)
	if err != nil {
		if os.IsNotExist(err) && allowErrors {
			return
		}
		t.Fatalf("Failed to read folder %s: %v", directory, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		filename := filepath.Join(directory, entry.Name())
		t.Run(strings.TrimSuffix(entry.Name(), ".json"), func(t *testing.T) {
			spec, err := loadFile(filename)
			if err != nil {
				t.Fatalf("Failed to load contents of file %s: %v", filename, err)
			}

			if !allowErrors && spec.hasErrors() {
				t.Fatalf("Exemplary spec %s must not expect errors.", filename)
			}

			runSpec(t, filename, spec, bidder)
		})
	}
}

func loadFile(filename string) (*testSpec, error) {
	specData, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("Failed to read file %s: %v", filename, err)
	}

	var spec testSpec
	if err := json.Unmarshal(specData, &spec); err != nil {
		return nil, fmt.Errorf("Failed to unmarshal JSON from file: %v", err)
	}

	return &spec, nil
}

// runSpec runs a single test case. It will make sure:
//
//   - That the Bidder does not return nil HTTP requests, bids, or errors inside their lists
//   - That the Bidder's HTTP calls match the spec's expectations.
//   - That the Bidder's Bids match the spec's expectations
//   - That the Bidder's errors match the spec's expectations
func runSpec(t *testing.T, filename string, spec *testSpec, bidder adapters.Bidder) {
	reqInfo := adapters.NewExtraRequestInfo("test")

	requests, errs := bidder.MakeRequests(&spec.BidRequest, &reqInfo)
	assertErrorList(t, fmt.Sprintf("%s: MakeRequests", filename), errs, spec.MakeRequestErrors)
	assertMakeRequestsOutput(t, filename, requests, spec.HttpCalls)

	var bidResponses []*adapters.BidderResponse
	var bidsErrs []error
	for i := 0; i < len(spec.HttpCalls) && i < len(requests); i++ {
		bidResponse, theseErrs := bidder.MakeBids(&spec.BidRequest, requests[i], spec.HttpCalls[i].Response.ToResponseData(t))
		bidsErrs = append(bidsErrs, theseErrs...)
		if bidResponse != nil {
			bidResponses = append(bidResponses, bidResponse)
		}
	}

	assertErrorList(t, fmt.Sprintf("%s: MakeBids", filename), bidsErrs, spec.MakeBidsErrors)
	assertBidResponses(t, filename, bidResponses, spec.BidResponses)
}

type testSpec struct {
	BidRequest        openrtb2.BidRequest     `json:"mockBidRequest"`
	HttpCalls         []httpCall              `json:"httpCalls"`
	BidResponses      []expectedBidResponse   `json:"expectedBidResponses"`
	MakeRequestErrors []testSpecExpectedError `json:"expectedMakeRequestsErrors"`
	MakeBidsErrors    []testSpecExpectedError `json:"expectedMakeBidsErrors"`
}

func (spec *testSpec) hasErrors() bool {
	return len(spec.MakeRequestErrors) > 0 || len(spec.MakeBidsErrors) > 0
}

type testSpecExpectedError struct {
	Value      string `json:"value"`
	Comparison string `json:"comparison"`
}

type httpCall struct {
	Request  httpRequest  `json:"expectedRequest"`
	Response httpResponse `json:"mockResponse"`
}

type httpRequest struct {
	Body    json.RawMessage `json:"body"`
	Uri     string          `json:"uri"`
	Method  string          `json:"method,omitempty"`
	Headers http.Header     `json:"headers"`
	ImpIDs  []string        `json:"impIDs"`
}

type httpResponse struct {
	Status  int             `json:"status"`
	Body    json.RawMessage `json:"body"`
	Headers http.Header     `json:"headers"`
}

func (resp *httpResponse) ToResponseData(t *testing.T) *adapters.ResponseData {
	return &adapters.ResponseData{
		StatusCode: resp.Status,
		Body:       resp.Body,
		Headers:    resp.Headers,
	}
}

type expectedBidResponse struct {
	Bids     []expectedBid `json:"bids"`
	Currency string        `json:"currency"`
}

type expectedBid struct {
	Bid  json.RawMessage `json:"bid"`
	Type string          `json:"type"`
}

// ---------------------------------------
// Lots of ugly, repetitive code below here.

// assertMakeRequestsOutput compares the actual http requests to the expected ones.
func assertMakeRequestsOutput(t *testing.T, filename string, actual []*adapters.RequestData, expected []httpCall) {
	t.Helper()

	if len(expected) != len(actual) {
		t.Fatalf("%s: MakeRequests had wrong request count. Expected %d, got %d", filename, len(expected), len(actual))
	}
	for i := 0; i < len(expected); i++ {
		if actual[i] == nil {
			t.Fatalf("%s: MakeRequests returned a nil request at index %d", filename, i)
		}
		diffHttpRequests(t, fmt.Sprintf("%s: httpRequest[%d]", filename, i), actual[i], &expected[i].Request)
	}
}

func assertErrorList(t *testing.T, description string, actual []error, expected []testSpecExpectedError) {
	t.Helper()

	if len(expected) != len(actual) {
		t.Fatalf("%s had wrong error count. Expected %d, got %d (%v)", description, len(expected), len(actual), actual)
	}
	for i := 0; i < len(actual); i++ {
		if actual[i] == nil {
			t.Fatalf("%s error[%d] was nil", description, i)
		}
		if expected[i].Comparison == "literal" {
			if expected[i].Value != actual[i].Error() {
				t.Errorf(`%s error[%d] had wrong message. Expected "%s", got "%s"`, description, i, expected[i].Value, actual[i].Error())
			}
		} else if expected[i].Comparison == "regex" {
			if matched, _ := regexp.MatchString(expected[i].Value, actual[i].Error()); !matched {
				t.Errorf(`%s error[%d] had wrong message. Expected match with regex "%s", got "%s"`, description, i, expected[i].Value, actual[i].Error())
			}
		} else {
			t.Fatalf(`invalid comparison type "%s"`, expected[i].Comparison)
		}
	}
}

func assertBidResponses(t *testing.T, filename string, actualBidResponses []*adapters.BidderResponse, expectedBidResponses []expectedBidResponse) {
	t.Helper()

	if len(actualBidResponses) != len(expectedBidResponses) {
		t.Fatalf("%s: MakeBids returned wrong bid response count. Expected %d, got %d", filename, len(expectedBidResponses), len(actualBidResponses))
	}
	for i := 0; i < len(actualBidResponses); i++ {
		if actualBidResponses[i].Currency != expectedBidResponses[i].Currency {
			t.Errorf("%s: MakeBids bidResponse[%d] had currency %q, expected %q", filename, i, actualBidResponses[i].Currency, expectedBidResponses[i].Currency)
		}
		assertBids(t, fmt.Sprintf("%s: bidResponse[%d]", filename, i), actualBidResponses[i].Bids, expectedBidResponses[i].Bids)
	}
}

func assertBids(t *testing.T, description string, actual []*adapters.TypedBid, expected []expectedBid) {
	t.Helper()

	if len(actual) != len(expected) {
		t.Fatalf("%s returned wrong bid count. Expected %d, got %d", description, len(expected), len(actual))
	}
	for i := 0; i < len(actual); i++ {
		if actual[i] == nil {
			t.Fatalf("%s bid[%d] was nil", description, i)
		}
		assert.Equal(t, expected[i].Type, string(actual[i].BidType), "%s bid[%d] had the wrong type", description, i)

		bidJSON, err := json.Marshal(actual[i].Bid)
		if err != nil {
			t.Fatalf("%s bid[%d] could not be marshalled: %v", description, i, err)
		}
		diffJson(t, fmt.Sprintf("%s bid[%d]", description, i), bidJSON, expected[i].Bid)
	}
}

// diffHttpRequests compares the actual HTTP request data to the expected one.
// It assumes that the request bodies are JSON
func diffHttpRequests(t *testing.T, description string, actual *adapters.RequestData, expected *httpRequest) {
	t.Helper()

	if actual.Uri != expected.Uri {
		t.Errorf(`%s had wrong uri. Expected "%s", got "%s"`, description, expected.Uri, actual.Uri)
	}
	if expected.Method != "" && actual.Method != expected.Method {
		t.Errorf(`%s had wrong method. Expected "%s", got "%s"`, description, expected.Method, actual.Method)
	}
	if expected.Headers != nil {
		assert.Equal(t, expected.Headers, actual.Headers, "%s had wrong headers", description)
	}
	if expected.ImpIDs != nil {
		assert.Equal(t, expected.ImpIDs, actual.ImpIDs, "%s had wrong impIDs", description)
	}

	diffJson(t, description+" body", actual.Body, expected.Body)
}

// diffJson compares two JSON byte arrays for structural equality. It will produce an error if either
// byte array is not actually JSON.
func diffJson(t *testing.T, description string, actual []byte, expected []byte) {
	t.Helper()

	if len(actual) == 0 && len(expected) == 0 {
		return
	}
	if len(actual) == 0 || len(expected) == 0 {
		t.Fatalf("%s json diff failed. Expected %s, actual %s", description, expected, actual)
	}

	diff, err := gojsondiff.New().Compare(actual, expected)
	if err != nil {
		t.Fatalf("%s json diff failed. %v", description, err)
	}

	if diff.Modified() {
		var left interface{}
		if err := json.Unmarshal(actual, &left); err != nil {
			t.Fatalf("%s json did not match, but unmarshalling failed. %v", description, err)
		}
		printer := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
			ShowArrayIndex: true,
		})
		output, err := printer.Format(diff)
		if err != nil {
			t.Errorf("%s did not match, but diff formatting failed. %v", description, err)
		} else {
			t.Errorf("%s json did not match expected.\n\n%s", description, output)
		}
	}
}
