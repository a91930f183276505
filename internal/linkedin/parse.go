package linkedin

import (
	"io"
	"strings"

	"go-linkedin-sweeper/internal/geo"
	"go-linkedin-sweeper/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const jobURNPrefix = "urn:li:jobPosting:"

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseSearchResults reads the job cards of a guest search page. Cards
// without a job URN are kept with an empty JobID so the processor counts them.
func parseSearchResults(r io.Reader) ([]models.JobListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var jobs []models.JobListing
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		card := li.Find(".base-card, .base-search-card, .job-search-card").First()
		if card.Length() == 0 {
			return
		}

		job := models.JobListing{
			Title:    cleanText(card.Find(".base-search-card__title").First().Text()),
			Company:  cleanText(card.Find(".base-search-card__subtitle").First().Text()),
			Location: cleanText(card.Find(".job-search-card__location").First().Text()),
		}

		urn, _ := card.Attr("data-entity-urn")
		if urn == "" {
			urn, _ = li.Find("[data-entity-urn]").First().Attr("data-entity-urn")
		}
		job.JobID = strings.TrimPrefix(strings.TrimSpace(urn), jobURNPrefix)

		if href, ok := card.Find(".base-search-card__subtitle a").First().Attr("href"); ok {
			job.CompanyURL = strings.TrimSpace(href)
		}
		if normalized, ok := geo.Normalize(job.Location); ok {
			job.Location = normalized
		}

		jobs = append(jobs, job)
	})
	return jobs, nil
}

func parseDescription(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	markup := doc.Find(".show-more-less-html__markup").First()
	if markup.Length() == 0 {
		markup = doc.Find(".description__text").First()
	}
	return strings.TrimSpace(markup.Text()), nil
}
