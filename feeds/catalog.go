package feeds

import (
	"feedwords/models"

	"github.com/samber/lo"
)

// defaultFeeds is the catalog offered until a selection has been saved
var defaultFeeds = []models.Feed{
	{Name: "BBC News", URL: "http://feeds.bbci.co.uk/news/rss.xml", Category: "General"},
	{Name: "Reuters", URL: "http://feeds.reuters.com/reuters/topNews", Category: "General"},
	{Name: "CNN", URL: "http://rss.cnn.com/rss/edition.rss", Category: "General"},
	{Name: "TechCrunch", URL: "http://feeds.feedburner.com/TechCrunch", Category: "General"},
	{Name: "Hacker News", URL: "https://hnrss.org/frontpage", Category: "General"},
	{Name: "Ars Technica", URL: "http://arstechnica.com/feed/", Category: "Technology & Science"},
	{Name: "The Register", URL: "http://www.theregister.co.uk/headlines.atom", Category: "Technology & Science"},
	{Name: "Schneier on Security", URL: "https://www.schneier.com/feed/atom/", Category: "Technology & Science"},
	{Name: "Krebs on Security", URL: "https://krebsonsecurity.com/feed/", Category: "Technology & Science"},
	{Name: "NYT Technology", URL: "http://rss.nytimes.com/services/xml/rss/nyt/Technology.xml", Category: "Technology & Science"},
	{Name: "Slashdot", URL: "http://rss.slashdot.org/Slashdot/slashdotMain", Category: "Technology & Science"},
	{Name: "LA Times Technology", URL: "http://www.latimes.com/business/technology/rss2.0.xml", Category: "Technology & Science"},
	{Name: "GitHub Blog", URL: "https://github.com/blog/all.atom", Category: "Technology & Science"},
	{Name: "Scientific American", URL: "http://rss.sciam.com/basic-science", Category: "Technology & Science"},
	{Name: "Scientific American Global", URL: "http://rss.sciam.com/ScientificAmerican-Global", Category: "Technology & Science"},
	{Name: "Scientific American Technology", URL: "http://rss.sciam.com/sciam/technology", Category: "Technology & Science"},
	{Name: "The RISKS Digest", URL: "http://catless.ncl.ac.uk/risksatom.xml", Category: "Technology & Science"},
	{Name: "NYT Top Stories", URL: "http://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml", Category: "News & Politics"},
	{Name: "NYT US News", URL: "http://rss.nytimes.com/services/xml/rss/nyt/US.xml", Category: "News & Politics"},
	{Name: "Washington Post Politics", URL: "http://feeds.washingtonpost.com/rss/politics", Category: "News & Politics"},
	{Name: "NPR Politics", URL: "http://www.npr.org/rss/rss.php?id=1014", Category: "News & Politics"},
	{Name: "Guardian US", URL: "http://www.guardian.co.uk/world/usa/rss", Category: "News & Politics"},
	{Name: "ProPublica", URL: "http://feeds.propublica.org/propublica/main", Category: "News & Politics"},
	{Name: "Talking Points Memo", URL: "https://talkingpointsmemo.com/news/feed", Category: "News & Politics"},
	{Name: "Naked Capitalism", URL: "https://www.nakedcapitalism.com/feed", Category: "News & Politics"},
	{Name: "The Real News Network", URL: "https://therealnews.com/feed?partner-feed=the-real-news-network", Category: "News & Politics"},
	{Name: "Texas Tribune", URL: "https://feeds.texastribune.org/feeds/main/?_ga=2.223565083.1653973109.1685112376-13535722.1664292644", Category: "News & Politics"},
	{Name: "CNBC US Top News", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html", Category: "Business & Finance"},
	{Name: "WSJ Technology", URL: "https://feeds.a.dj.com/rss/RSSWSJD.xml", Category: "Business & Finance"},
	{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rss", Category: "Business & Finance"},
	{Name: "Nasdaq Data Link Blog", URL: "https://blog.quandl.com/feed", Category: "Business & Finance"},
	{Name: "Pluralistic (Cory Doctorow)", URL: "https://pluralistic.net/feed/", Category: "Special Interest"},
	{Name: "Dave Winer", URL: "http://scripting.com/rss.xml", Category: "Special Interest"},
	{Name: "Web3 is Going Just Great", URL: "https://web3isgoinggreat.com/feed.xml", Category: "Special Interest"},
	{Name: "Full Disclosure (Security)", URL: "http://seclists.org/rss/fulldisclosure.rss", Category: "Special Interest"},
	{Name: "r/ESP32", URL: "https://www.reddit.com/r/esp32.rss", Category: "Reddit"},
	{Name: "r/HomeAssistant", URL: "https://www.reddit.com/r/homeassistant.rss", Category: "Reddit"},
	{Name: "r/PythonPandas", URL: "https://www.reddit.com/r/PythonPandas.rss", Category: "Reddit"},
	{Name: "r/AliExpressFinds", URL: "https://www.reddit.com/r/aliexpressfinds.rss", Category: "Reddit"},
	{Name: "Pravda Report", URL: "https://feeds.feedburner.com/engpravda", Category: "International"},
}

// Catalog returns the built-in feeds in display order
func Catalog() []models.Feed {
	feeds := make([]models.Feed, len(defaultFeeds))
	copy(feeds, defaultFeeds)
	return feeds
}

// DefaultCatalog returns the built-in feeds as an ordered name to url list
func DefaultCatalog() *models.FeedList {
	return ToFeedList(defaultFeeds)
}

// ToFeedList converts feeds to an ordered list, the first url for a name wins
func ToFeedList(feeds []models.Feed) *models.FeedList {
	list := models.NewOrderedMap[string]()
	for _, f := range feeds {
		if _, ok := list.Get(f.Name); ok || f.Name == "" {
			continue
		}
		list.Set(f.Name, f.URL)
	}
	return list
}

// Categories returns the distinct catalog categories in order
func Categories(feeds []models.Feed) []string {
	return lo.Uniq(lo.Map(feeds, func(f models.Feed, _ int) string {
		return f.Category
	}))
}

// InCategory returns the catalog feeds of one category
func InCategory(feeds []models.Feed, category string) []models.Feed {
	return lo.Filter(feeds, func(f models.Feed, _ int) bool {
		return f.Category == category
	})
}
