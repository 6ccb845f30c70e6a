package elastic

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/db/query"
)

func assertGoldenBody(t *testing.T, name string, req *db.SearchRequest) {
	t.Helper()
	body, err := searchBody(req)
	if err != nil {
		t.Fatalf("searchBody: %v", err)
	}

	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, name, append(data, '\n'))
}

func TestSearchBody_Junction(t *testing.T) {
	assertGoldenBody(t, "junction", &db.SearchRequest{
		Index: "historical_claim",
		Query: query.Bool().AddMust(
			query.Term("model_tag.keyword", "HealthInsuredClaimEclaim"),
			query.Term("health_insured_claim", json.Number("100")),
		),
		Size: 1,
	})
}

func TestSearchBody_FlowEvents(t *testing.T) {
	assertGoldenBody(t, "flow_events", &db.SearchRequest{
		Index: "historical_claim",
		Query: query.Bool().SetMinimumShouldMatch(1).AddShould(
			query.Bool().AddMust(
				query.Term("model_tag.keyword", "HealthInsuredClaim"),
				query.Term("id", json.Number("100")),
			),
			query.Bool().AddMust(
				query.Term("model_tag.keyword", "HealthClaimDocument"),
				query.Term("id", json.Number("200")),
			),
		),
		Sort: []query.SortField{query.Asc("timestamp"), query.Asc(query.IndexOrder)},
		Size: 300,
	})
}

func TestSearchBody_JourneySearch(t *testing.T) {
	assertGoldenBody(t, "journey_search", &db.SearchRequest{
		Index: "journey_v3",
		Query: query.Bool().
			AddMust(query.Term("id.keyword", "j1")).
			AddShould(
				query.Term("title.keyword", "Onboarding").WithBoost(5),
				query.Match("title", "Onboarding").Fuzzy(),
				query.Term("username.keyword", "alice").WithBoost(4),
				query.Match("username", "alice").Fuzzy(),
			),
		Size: 10,
	})
}

func TestSearchBody_Page(t *testing.T) {
	assertGoldenBody(t, "page", &db.SearchRequest{
		Index: "journey_v3",
		Query: query.MatchAll(),
		Sort:  []query.SortField{query.Desc("timestamp")},
		From:  20,
		Size:  10,
	})
}

func TestSearchBody_MustNot(t *testing.T) {
	assertGoldenBody(t, "must_not", &db.SearchRequest{
		Index: "journey_v3",
		Query: query.Bool().
			AddMust(query.Match("title", "claim")).
			AddMustNot(query.Term("state", "ARCHIVED")),
	})
}
