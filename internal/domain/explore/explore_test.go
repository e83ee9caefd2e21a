package explore_test

import (
	"testing"

	"github.com/okian/churnscope/internal/domain/explore"
	"github.com/okian/churnscope/internal/domain/model"
	"github.com/okian/churnscope/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func sample() []model.Observation {
	return []model.Observation{
		{ID: "1", JobTitle: "csm", TaskCategory: "account review", ToolsUsed: []string{"salesforce", "tableau"}, DataSourcesAccessed: []string{"CRM data", "usage logs"}},
		{ID: "2", JobTitle: "analyst", TaskCategory: "data analysis", ToolsUsed: []string{"python", "sql"}, DataSourcesAccessed: []string{"data warehouse"}},
		{ID: "3", JobTitle: "csm", TaskCategory: "risk assessment", ToolsUsed: []string{"tableau"}, DataSourcesAccessed: []string{"CRM data"}},
	}
}

func ids(obs []model.Observation) []string {
	out := make([]string, len(obs))
	for i, o := range obs {
		out[i] = o.ID
	}
	return out
}

func TestApply(t *testing.T) {
	Convey("Given a set of observations", t, func() {
		obs := sample()

		Convey("When the filter is empty", func() {
			Convey("Then everything passes", func() {
				So(ids(explore.Apply(obs, explore.Filter{})), ShouldResemble, []string{"1", "2", "3"})
			})
		})

		Convey("When filtering by job title", func() {
			got := explore.Apply(obs, explore.Filter{JobTitles: []string{"csm", "am"}})

			Convey("Then any listed title matches", func() {
				So(ids(got), ShouldResemble, []string{"1", "3"})
			})
		})

		Convey("When filtering by tools", func() {
			got := explore.Apply(obs, explore.Filter{Tools: []string{"tableau", "salesforce"}})

			Convey("Then every listed tool must be present", func() {
				So(ids(got), ShouldResemble, []string{"1"})
			})
		})

		Convey("When filtering by raw user input", func() {
			f := explore.Filter{Sources: []string{" CRM "}, TaskCategories: []string{"Risk Assessment"}}.
				Normalized(normalize.DefaultCanonicalizer())

			Convey("Then values are cleaned and canonicalized first", func() {
				So(f.Sources, ShouldResemble, []string{"CRM data"})
				So(ids(explore.Apply(obs, f)), ShouldResemble, []string{"3"})
			})
		})

		Convey("When nothing matches", func() {
			Convey("Then the result is empty", func() {
				So(explore.Apply(obs, explore.Filter{JobTitles: []string{"cfo"}}), ShouldBeEmpty)
			})
		})
	})
}

func TestCollectFacets(t *testing.T) {
	Convey("Given a set of observations", t, func() {
		f := explore.CollectFacets(sample())

		Convey("Then facets are distinct and sorted", func() {
			So(f.JobTitles, ShouldResemble, []string{"analyst", "csm"})
			So(f.TaskCategories, ShouldResemble, []string{"account review", "data analysis", "risk assessment"})
			So(f.Tools, ShouldResemble, []string{"python", "salesforce", "sql", "tableau"})
			So(f.Sources, ShouldResemble, []string{"CRM data", "data warehouse", "usage logs"})
		})
	})
}
