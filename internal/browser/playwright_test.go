package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobsearch-rpa/internal/dom"
	"go-jobsearch-rpa/internal/scraper/glassdoor"
)

const listingHTML = `<!doctype html>
<html><body>
<div class="modal_ModalContainer__GGVJc"><button onclick="this.parentElement.remove()">×</button></div>
<ul id="jobs">
  <li class="jobCard">
    <a class="JobCard_jobTitle__x">Go Developer</a>
    <span class="EmployerProfile_name">Acme</span>
    <div class="JobCard_location__y">London</div>
    <a class="JobCard_trackingLink__z" onclick="document.getElementById('desc').innerText='Build services in Go'">open</a>
  </li>
  <li class="jobCard">
    <a class="JobCard_jobTitle__x">Senior Engineer</a>
    <span class="EmployerProfile_name">Globex</span>
    <div class="JobCard_location__y">Leeds</div>
  </li>
</ul>
<button data-test="load-more" onclick="
  const li = document.createElement('li');
  li.className = 'jobCard';
  li.innerHTML = '<a class=&quot;JobCard_jobTitle__x&quot;>Platform Engineer</a><span class=&quot;EmployerProfile_name&quot;>Initech</span><div class=&quot;JobCard_location__y&quot;>Remote</div>';
  document.getElementById('jobs').appendChild(li);
  this.remove();
">Show more jobs</button>
<div class="JobDetails_jobDescription__q" id="desc"></div>
</body></html>`

func TestPlaywrightAgainstMockListing(t *testing.T) {
	if testing.Short() {
		t.Skip("launches a real browser")
	}
	pm, err := NewPlaywright(context.Background(), Options{Browser: "CHROMIUM", Headless: true})
	if err != nil {
		t.Skipf("playwright unavailable: %v", err)
	}
	defer pm.Close()

	require.NoError(t, pm.Raw().SetContent(listingHTML))

	timing := glassdoor.DefaultTiming(500 * time.Millisecond)
	timing.DetailSettle = 100 * time.Millisecond
	timing.LoadMoreProbe = 300 * time.Millisecond
	timing.ModalProbe = 300 * time.Millisecond
	gd := glassdoor.NewPage(pm.Page(), glassdoor.Options{
		Selectors: glassdoor.DefaultSelectors(),
		Timing:    timing,
		Actuator:  []dom.ActuatorOption{dom.WithDefaultRetryDelay(50 * time.Millisecond), dom.WithProbeTimeout(300 * time.Millisecond)},
	})
	ctx := context.Background()

	assert.True(t, gd.CloseModalIfExists(ctx))
	require.NoError(t, gd.LoadAll(ctx))

	got, err := gd.Extract(ctx, []string{"senior"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Go Developer", got[0].Title)
	assert.Equal(t, "Acme", got[0].Company)
	assert.Equal(t, "Build services in Go", got[0].Description)
	assert.Equal(t, "Platform Engineer", got[1].Title)
}

func TestPlaywrightClosedPageIsDisconnected(t *testing.T) {
	if testing.Short() {
		t.Skip("launches a real browser")
	}
	pm, err := NewPlaywright(context.Background(), Options{Browser: "CHROMIUM", Headless: true})
	if err != nil {
		t.Skipf("playwright unavailable: %v", err)
	}
	defer pm.Close()

	page := pm.Page()
	require.NoError(t, pm.Raw().Close())

	_, err = page.WaitForSelector("body", 100*time.Millisecond)
	assert.ErrorIs(t, err, dom.ErrDisconnected)
}
