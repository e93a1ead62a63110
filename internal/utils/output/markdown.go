package output

import (
	"bytes"
	"fmt"
	"html/template"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	urlutil "github.com/law-makers/tokscrape/internal/utils/url"
	"github.com/law-makers/tokscrape/pkg/models"
)

var reportTmpl = template.Must(template.New("report").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`<h1>{{.Profile.DisplayName}} (@{{.Profile.Username}})</h1>
{{with .Profile.Bio}}<blockquote>{{.}}</blockquote>{{end}}
<ul>
<li><strong>Followers:</strong> {{.Profile.Followers}}</li>
<li><strong>Following:</strong> {{.Profile.Following}}</li>
<li><strong>Likes:</strong> {{.Profile.Likes}}</li>
<li><strong>Videos in tab:</strong> {{.TotalPopularVideos}}</li>
<li><strong>Videos scraped:</strong> {{len .Videos}}</li>
</ul>
<table>
<thead><tr><th>#</th><th>Video</th><th>Views</th><th>Likes</th><th>Comments</th><th>Shares</th></tr></thead>
<tbody>
{{range $i, $v := .Videos}}<tr><td>{{inc $i}}</td><td><a href="{{$v.VideoLink}}">video</a></td><td>{{$v.Views}}</td><td>{{$v.Likes}}</td><td>{{$v.Comments}}</td><td>{{$v.Shares}}</td></tr>
{{end}}</tbody>
</table>`))

// RenderMarkdown renders res as a Markdown report with a GitHub-flavored
// table of the scraped videos. Relative links are resolved against baseURL.
func RenderMarkdown(res *models.Result, baseURL string) (string, error) {
	var html bytes.Buffer
	if err := reportTmpl.Execute(&html, res); err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			str := fmt.Sprintf("[%s](%s)", selec.Text(), urlutil.ResolveURL(baseURL, href))
			return &str
		},
	})

	return converter.ConvertString(html.String())
}

// SaveMarkdown writes the Markdown report to path.
func SaveMarkdown(res *models.Result, baseURL, path string) error {
	s, err := RenderMarkdown(res, baseURL)
	if err != nil {
		return err
	}
	return writeFile(path, []byte(s))
}
