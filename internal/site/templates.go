package site

import (
	"html/template"
)

// Page data passed to the templates below. The markup mirrors the published
// site: class names and element structure are part of the stylesheet
// contract and must not drift.

type navData struct {
	SiteName string
	Tagline  string
}

type breadcrumbItem struct {
	Label string
	Link  string // empty for the current page
}

type pageLink struct {
	N       int
	Href    string
	Current bool
}

type paginationData struct {
	PrevHref string // empty renders a disabled control
	NextHref string
	Pages    []pageLink
}

type card struct {
	Title     string
	ThumbURL  string
	DetailURL string
}

type homeData struct {
	Title      string
	Nav        navData
	Copyright  string
	Images     []homeImage
	ImagesJSON template.JS
}

type homeImage struct {
	Name   string
	Src    string
	Active bool
}

type reelData struct {
	Title     string
	Nav       navData
	Copyright string
	ReelName  string
	Src       string
}

type listingData struct {
	Title      string
	Stylesheet string
	Nav        navData
	Copyright  string
	Breadcrumb []breadcrumbItem
	Cards      []card
	Pagination paginationData
}

type detailData struct {
	Title       string
	Stylesheet  string
	Nav         navData
	Copyright   string
	Breadcrumb  []breadcrumbItem
	Description string
	Image       string            // photography only
	Images      []storyboardPanel // storyboard only
}

type storyboardPanel struct {
	URL         string
	Name        string
	Description string
}

const pageTemplates = `
{{define "menuScript"}}<script>
  function toggleMobileMenu() {
    const navLinks = document.getElementById('navLinks');
    const hamburger = document.querySelector('.hamburger-menu');
    navLinks.classList.toggle('active');
    hamburger.classList.toggle('active');
  }
  document.addEventListener('DOMContentLoaded', function() {
    const hamburger = document.querySelector('.hamburger-menu');
    if (hamburger) {
      hamburger.addEventListener('click', toggleMobileMenu);
    }
  });
</script>{{end}}

{{define "navigation"}}<nav class="main-nav">
  <div class="logo"><h1>{{.SiteName}}</h1><h2>{{.Tagline}}</h2></div>
  <button class="hamburger-menu" aria-label="Toggle menu"><span></span><span></span><span></span></button>
  <div class="nav-links" id="navLinks">
    <a href="/index.html">HOME</a>
    <a href="/reel.html">REEL</a>
    <div class="dropdown">
      <a href="/work.html">WORK</a>
      <div class="dropdown-content">
        <a href="/storyboard/storyboard-list-1.html">STORYBOARD</a>
        <a href="/photography/photography-list-1.html">PHOTOGRAPHY</a>
      </div>
    </div>
    <a href="/about.html">ABOUT</a>
    <a href="/contact.html">CONTACT</a>
  </div>
</nav>{{end}}

{{define "footer"}}<footer class="main-footer">
  <div class="copyright">{{.}}</div>
</footer>{{end}}

{{define "breadcrumb"}}<div class="breadcrumb">
{{- range $i, $item := . }}
  {{- if $item.Link }}<a href="{{$item.Link}}" class="breadcrumb-link breadcrumb-home">{{$item.Label}}</a>
  {{- else }}<span class="breadcrumb-current">{{$item.Label}}</span>{{end}}
  {{- if notLast $i (len $) }}<span class="breadcrumb-separator breadcrumb-home"> / </span>{{end}}
{{- end }}
</div>{{end}}

{{define "pagination"}}<div class="pagination">
  {{- if .PrevHref }}<a href="{{.PrevHref}}" class="page-btn">&#8592;</a>{{else}}<span class="page-btn disabled">&#8592;</span>{{end}}
  {{- range .Pages }}
    {{- if .Current }}<span class="page-btn active">{{.N}}</span>{{else}}<a href="{{.Href}}" class="page-btn">{{.N}}</a>{{end}}
  {{- end }}
  {{- if .NextHref }}<a href="{{.NextHref}}" class="page-btn">&#8594;</a>{{else}}<span class="page-btn disabled">&#8594;</span>{{end}}
</div>{{end}}

{{define "home"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="styles.css">
  {{template "menuScript"}}
  <style>
    .gallery-image { display: none; position: absolute; width: 100%; height: 100%; object-fit: cover; }
    .gallery-image.active { display: block; }
    .image-title { position: absolute; top: 50%; left: 50%; transform: translate(-50%, -50%); color: white; font-size: 2.5rem; text-align: center; z-index: 10; text-shadow: 2px 2px 4px rgba(0, 0, 0, 0.5); opacity: 0; transition: opacity 0.3s ease; }
    .image-title.active { opacity: 1; }
  </style>
</head>
<body>
  <div id="app">
    <div class="page-container">
      {{template "navigation" .Nav}}
      <main class="main-content">
        <div class="image-container">
          {{- range .Images }}
          <img src="{{.Src}}" alt="{{.Name}}" class="gallery-image{{if .Active}} active{{end}}">
          <h2 class="image-title{{if .Active}} active{{end}}">{{.Name}}</h2>
          {{- end }}
          <button class="nav-arrow left" type="button">&#8592;</button>
          <button class="nav-arrow right" type="button">&#8594;</button>
        </div>
      </main>
      {{template "footer" .Copyright}}
    </div>
  </div>
  <script>
    window.images = {{.ImagesJSON}};
    window.currentImage = 0;
    window.changeImage = function(direction) {
      if (!window.images || !window.images.length) return;
      document.querySelector('.gallery-image.active').classList.remove('active');
      document.querySelector('.image-title.active').classList.remove('active');
      window.currentImage = (window.currentImage + direction + window.images.length) % window.images.length;
      document.querySelectorAll('.gallery-image')[window.currentImage].classList.add('active');
      document.querySelectorAll('.image-title')[window.currentImage].classList.add('active');
    }
    document.querySelector('.nav-arrow.left').addEventListener('click', () => window.changeImage(-1));
    document.querySelector('.nav-arrow.right').addEventListener('click', () => window.changeImage(1));
  </script>
</body>
</html>{{end}}

{{define "reel"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="styles.css">
  {{template "menuScript"}}
</head>
<body>
  <div id="app">
    <div class="page-container">
      {{template "navigation" .Nav}}
      <main class="reel-content">
        <div class="reel-container">
          <h1 class="reel-title">{{.ReelName}}</h1>
          <div class="video-wrapper">
            <video src="{{.Src}}" controls class="reel-video"></video>
          </div>
        </div>
      </main>
      {{template "footer" .Copyright}}
    </div>
  </div>
</body>
</html>{{end}}

{{define "listing"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no">
  <meta http-equiv="Cache-Control" content="no-cache, no-store, must-revalidate">
  <meta http-equiv="Pragma" content="no-cache">
  <meta http-equiv="Expires" content="0">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="{{.Stylesheet}}">
  {{template "menuScript"}}
</head>
<body>
  <div id="app">
    <div class="page-container scrollable-page">
      {{template "navigation" .Nav}}
      <main class="photography-content">
        {{template "breadcrumb" .Breadcrumb}}
        <div class="photography-grid">
          {{- range .Cards }}
          <article class="photo-card">
            <a href="{{.DetailURL}}" class="photo-card-link">
              <div class="card-image"><img src="{{.ThumbURL}}" alt="{{.Title}}"></div>
              <div class="card-content"><h2>{{.Title}}</h2></div>
            </a>
          </article>
          {{- end }}
        </div>
        {{template "pagination" .Pagination}}
      </main>
      {{template "footer" .Copyright}}
    </div>
  </div>
</body>
</html>{{end}}

{{define "photographyDetail"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no">
  <meta http-equiv="Cache-Control" content="no-cache, no-store, must-revalidate">
  <meta http-equiv="Pragma" content="no-cache">
  <meta http-equiv="Expires" content="0">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="{{.Stylesheet}}">
  {{template "menuScript"}}
</head>
<body>
  <div id="app">
    <div class="page-container scrollable-page">
      {{template "navigation" .Nav}}
      <main class="photography-detail-content">
        {{template "breadcrumb" .Breadcrumb}}
        <div class="photography-detail">
          {{- if .Image }}
          <div class="detail-image-section"><img src="{{.Image}}" alt="{{.Title}}" class="detail-image"></div>
          {{- end }}
          <div class="detail-text-section">
            <h1 class="detail-title">{{.Title}}</h1>
            {{- if .Description }}<p class="detail-description">{{.Description}}</p>{{end}}
          </div>
        </div>
      </main>
      {{template "footer" .Copyright}}
    </div>
  </div>
</body>
</html>{{end}}

{{define "storyboardDetail"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0, maximum-scale=1.0, user-scalable=no">
  <meta http-equiv="Cache-Control" content="no-cache, no-store, must-revalidate">
  <meta http-equiv="Pragma" content="no-cache">
  <meta http-equiv="Expires" content="0">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="{{.Stylesheet}}">
  {{template "menuScript"}}
</head>
<body>
  <div id="app">
    <div class="page-container scrollable-page">
      {{template "navigation" .Nav}}
      <main class="storyboard-detail-content">
        {{template "breadcrumb" .Breadcrumb}}
        <div class="storyboard-detail">
          <div class="storyboard-header">
            <h1 class="detail-title">{{.Title}}</h1>
            {{- if .Description }}<p class="detail-description">{{.Description}}</p>{{end}}
          </div>
          {{- if .Images }}
          <div class="storyboard-images">
            {{- range .Images }}
            <div class="storyboard-image-item">
              <img src="{{.URL}}" alt="{{.Name}}" class="storyboard-image">
              <div class="image-caption">
                {{- if .Name }}<h3 class="image-name">{{.Name}}</h3>{{end}}
                {{- if .Description }}<p class="image-description">{{.Description}}</p>{{end}}
              </div>
            </div>
            {{- end }}
          </div>
          {{- end }}
        </div>
      </main>
      {{template "footer" .Copyright}}
    </div>
  </div>
</body>
</html>{{end}}
`

func newTemplates() *template.Template {
	return template.Must(template.New("site").Funcs(template.FuncMap{
		"notLast": func(i, n int) bool { return i < n-1 },
	}).Parse(pageTemplates))
}
