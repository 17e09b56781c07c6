package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/quotebuy/internal/session"
	"github.com/mrlokans/quotebuy/internal/submission"
)

// Notices shown after a submission.
const (
	NoticeAdded     = "Your quote has been added!"
	NoticeDuplicate = "That quote already exists, come up with something original."
	NoticePayment   = "There was a problem charging your card."
	NoticeConflict  = "Your payment went through but the quote could not be saved. We have recorded the charge and will reconcile it."
	NoticePreview   = "Preview updated."
	NoticeInternal  = "Something went wrong, please try again. You have not been charged."
)

// quoteForm is the posted buy/preview form.
type quoteForm struct {
	Quote       string `form:"quote" json:"quote"`
	Author      string `form:"author" json:"author"`
	StripeToken string `form:"stripeToken" json:"stripeToken"`
}

func (f quoteForm) submission() submission.Submission {
	return submission.Submission{Quote: f.Quote, Author: f.Author}
}

type SubmissionController struct {
	service  SubmissionService
	sessions *session.Manager
	checkout Checkout
}

func NewSubmissionController(service SubmissionService, sessions *session.Manager, checkout Checkout) *SubmissionController {
	return &SubmissionController{service: service, sessions: sessions, checkout: checkout}
}

// BuyPage renders the purchase form with any pending notice.
func (sc *SubmissionController) BuyPage(c *gin.Context) {
	flash, form := sc.popNotice(c)
	c.HTML(http.StatusOK, "buy", gin.H{
		"Title":       "Buy a quote",
		"Flash":       flash,
		"Form":        form,
		"CSRFToken":   session.Token(c),
		"StripeKey":   sc.checkout.StripePublishableKey,
		"AmountCents": sc.checkout.AmountCents,
		"Currency":    sc.checkout.Currency,
		"Description": sc.checkout.Description,
	})
}

// Buy runs a paid submission and redirects back to the form with a notice.
// JSON clients get the outcome in the response instead.
func (sc *SubmissionController) Buy(c *gin.Context) {
	var form quoteForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid form", Code: "bad_request"})
		return
	}

	out := sc.service.Buy(c.Request.Context(), form.submission(), form.StripeToken)
	kind, message := noticeFor(out)

	if wantsJSON(c) {
		sc.respondOutcome(c, out, message)
		return
	}

	ctx := c.Request.Context()
	if sc.sessions != nil {
		sc.sessions.AddFlash(ctx, kind, message)
		if out.State != submission.StateCommitted && out.State != submission.StateConflict {
			sc.sessions.SaveForm(ctx, formState(form, out.Errors))
		}
	}
	c.Redirect(http.StatusSeeOther, "/buy")
}

// PreviewPage renders the empty preview form.
func (sc *SubmissionController) PreviewPage(c *gin.Context) {
	flash, form := sc.popNotice(c)
	c.HTML(http.StatusOK, "preview", gin.H{
		"Title":     "Preview",
		"Flash":     flash,
		"Form":      form,
		"CSRFToken": session.Token(c),
	})
}

// Preview validates and renders a submission without charging or storing it.
func (sc *SubmissionController) Preview(c *gin.Context) {
	var form quoteForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid form", Code: "bad_request"})
		return
	}

	out := sc.service.Preview(c.Request.Context(), form.submission())
	kind, message := noticeFor(out)

	if wantsJSON(c) {
		sc.respondOutcome(c, out, message)
		return
	}

	status := http.StatusOK
	if out.State != submission.StatePreviewReady {
		status = http.StatusUnprocessableEntity
	}
	c.HTML(status, "preview", gin.H{
		"Title":     "Preview",
		"Flash":     &session.Flash{Kind: kind, Message: message},
		"Form":      formState(form, out.Errors),
		"Preview":   out.Preview,
		"CSRFToken": session.Token(c),
	})
}

func (sc *SubmissionController) popNotice(c *gin.Context) (*session.Flash, session.FormState) {
	if sc.sessions == nil {
		return nil, session.FormState{}
	}
	ctx := c.Request.Context()
	form := sc.sessions.PopForm(ctx)
	if flash, ok := sc.sessions.PopFlash(ctx); ok {
		return &flash, form
	}
	return nil, form
}

// outcomeResponse is the JSON body for buy and preview.
type outcomeResponse struct {
	State       string            `json:"state"`
	Message     string            `json:"message"`
	Quote       any               `json:"quote,omitempty"`
	Preview     any               `json:"preview,omitempty"`
	ChargeID    string            `json:"charge_id,omitempty"`
	FailureKind string            `json:"failure_kind,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
}

func (sc *SubmissionController) respondOutcome(c *gin.Context, out submission.Outcome, message string) {
	resp := outcomeResponse{
		State:       string(out.State),
		Message:     message,
		ChargeID:    out.ChargeID,
		FailureKind: string(out.FailureKind),
		Errors:      fieldErrors(out.Errors),
	}
	if out.Quote != nil {
		resp.Quote = out.Quote
	}
	if out.Preview != nil {
		resp.Preview = out.Preview
	}
	c.JSON(statusFor(out), resp)
}

// noticeFor maps an outcome to the notice shown to the visitor. A storage
// conflict has its own message: the visitor was charged.
func noticeFor(out submission.Outcome) (session.FlashKind, string) {
	switch out.State {
	case submission.StateCommitted:
		return session.FlashSuccess, NoticeAdded
	case submission.StatePreviewReady:
		return session.FlashInfo, NoticePreview
	case submission.StatePaymentFailed:
		return session.FlashError, NoticePayment
	case submission.StateConflict:
		return session.FlashError, NoticeConflict
	}

	var ve *submission.ValidationError
	if !errors.As(out.Err, &ve) {
		return session.FlashError, NoticeInternal
	}
	if ve.Has(submission.ReasonDuplicate) {
		return session.FlashError, NoticeDuplicate
	}
	return session.FlashError, ve.First().Message
}

func statusFor(out submission.Outcome) int {
	switch out.State {
	case submission.StateCommitted:
		return http.StatusCreated
	case submission.StatePreviewReady:
		return http.StatusOK
	case submission.StatePaymentFailed:
		return http.StatusPaymentRequired
	case submission.StateConflict:
		return http.StatusInternalServerError
	}
	if errors.Is(out.Err, submission.ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(out.Err, submission.ErrValidation) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func fieldErrors(errs []submission.FieldError) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	m := make(map[string]string, len(errs))
	for _, fe := range errs {
		m[fe.Field] = fe.Message
	}
	return m
}

func formState(form quoteForm, errs []submission.FieldError) session.FormState {
	return session.FormState{
		Quote:  form.Quote,
		Author: form.Author,
		Errors: fieldErrors(errs),
	}
}
