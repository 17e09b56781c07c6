package http

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quotebuy/internal/entities"
)

// emptyQuote is returned by /quote while nothing has been bought.
var emptyQuote = gin.H{
	"id":      -1,
	"quote":   "No quotes! Someone should buy one.",
	"author":  entities.DefaultAuthor,
	"created": "just now",
}

type QuotesController struct {
	quotes QuoteReader
	apiDoc template.HTML
}

func NewQuotesController(quotes QuoteReader, apiDoc template.HTML) *QuotesController {
	return &QuotesController{quotes: quotes, apiDoc: apiDoc}
}

// Random returns one quote chosen uniformly at random, or the empty sentinel.
func (qc *QuotesController) Random(c *gin.Context) {
	quote, err := qc.quotes.GetRandom(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "random quote")
		return
	}
	if quote == nil {
		c.JSON(http.StatusOK, emptyQuote)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// ViewAll lists every quote with totals.
func (qc *QuotesController) ViewAll(c *gin.Context) {
	ctx := c.Request.Context()
	quotes, err := qc.quotes.GetAll(ctx)
	if err != nil {
		respondInternalError(c, err, "list quotes")
		return
	}
	unique, err := qc.quotes.CountDistinctAuthors(ctx)
	if err != nil {
		respondInternalError(c, err, "count authors")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"quotes": nonNil(quotes), "total": len(quotes), "unique": unique})
		return
	}
	c.HTML(http.StatusOK, "view", gin.H{
		"Quotes": quotes,
		"Total":  len(quotes),
		"Unique": unique,
	})
}

// ViewByID shows a single quote.
func (qc *QuotesController) ViewByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondNotFound(c, "quote")
		return
	}

	quote, err := qc.quotes.GetByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get quote")
		return
	}

	if wantsJSON(c) {
		if quote == nil {
			respondNotFound(c, "quote")
			return
		}
		c.JSON(http.StatusOK, quote)
		return
	}

	status := http.StatusOK
	if quote == nil {
		status = http.StatusNotFound
	}
	c.HTML(status, "viewid", gin.H{
		"Title":  "Quote #" + strconv.FormatUint(uint64(id), 10),
		"Quote":  quote,
		"Number": id,
	})
}

// ViewByAuthor lists the quotes attributed to one name.
func (qc *QuotesController) ViewByAuthor(c *gin.Context) {
	author := c.Param("username")
	quotes, err := qc.quotes.GetByAuthor(c.Request.Context(), author)
	if err != nil {
		respondInternalError(c, err, "quotes by author")
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"author": author, "quotes": nonNil(quotes), "total": len(quotes)})
		return
	}
	c.HTML(http.StatusOK, "viewby", gin.H{
		"Title":  author,
		"Author": author,
		"Quotes": quotes,
		"Total":  len(quotes),
	})
}

// APIPage documents the JSON endpoints.
func (qc *QuotesController) APIPage(c *gin.Context) {
	c.HTML(http.StatusOK, "api", gin.H{"Title": "API", "Doc": qc.apiDoc})
}

func nonNil(quotes []entities.Quote) []entities.Quote {
	if quotes == nil {
		return []entities.Quote{}
	}
	return quotes
}
