package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sohepalslamat/shopify-front/internal/modules/merchants"
	"github.com/sohepalslamat/shopify-front/internal/modules/session"
)

// Pipeline runs the two dependent remote calls: create the cart-linked
// order at the processor, then relay the order metadata. Each call has a
// request timeout and a single bounded retry on transient failures;
// 4xx responses are permanent.
type Pipeline struct {
	HTTP    *http.Client
	Journal *Journal // optional
	Backoff time.Duration
}

func NewPipeline(timeout time.Duration, journal *Journal) *Pipeline {
	return &Pipeline{
		HTTP:    &http.Client{Timeout: timeout},
		Journal: journal,
		Backoff: 250 * time.Millisecond,
	}
}

type createOrderResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

type relayResponse struct {
	URL string `json:"url"`
}

// Submit executes the saga. On a relay failure after a successful create,
// the checkout URL is kept on the session so the next attempt resumes at
// the relay step instead of creating a second order; there is nothing
// remote to compensate.
func (p *Pipeline) Submit(ctx context.Context, m merchants.Merchant, sess *session.Checkout) (string, error) {
	checkoutURL := sess.CheckoutURL

	if checkoutURL == "" {
		payload, err := BuildOrderPayload(sess)
		if err != nil {
			return "", err
		}

		url := m.ProcessorBaseURL + "/cart_update/" + m.Code
		var res createOrderResponse
		if err := p.postJSON(ctx, url, payload, &res); err != nil {
			p.record(ctx, sess, m, StepCreateOrder, "", err)
			return "", &StepFailure{Step: StepCreateOrder, Err: err}
		}
		if res.CheckoutURL == "" {
			err := errors.New("response missing checkoutUrl")
			p.record(ctx, sess, m, StepCreateOrder, "", err)
			return "", &StepFailure{Step: StepCreateOrder, Err: err}
		}

		checkoutURL = res.CheckoutURL
		sess.CheckoutURL = checkoutURL
		p.record(ctx, sess, m, StepCreateOrder, checkoutURL, nil)
	} else {
		log.Printf("pipeline: session %s resuming at relay step", sess.ID)
	}

	rec := BuildSubmissionRecord(sess, m, checkoutURL, time.Now())
	var res relayResponse
	if err := p.postJSON(ctx, m.RelayURL, rec, &res); err != nil {
		p.record(ctx, sess, m, StepRelay, "", err)
		return "", &StepFailure{Step: StepRelay, Err: err}
	}
	if res.URL == "" {
		err := errors.New("unexpected response, redirect URL not received")
		p.record(ctx, sess, m, StepRelay, "", err)
		return "", &StepFailure{Step: StepRelay, Err: err}
	}

	p.record(ctx, sess, m, StepRelay, res.URL, nil)
	return res.URL, nil
}

// postJSON POSTs body and decodes the response into out, retrying once on
// transport errors and 5xx.
func (p *Pipeline) postJSON(ctx context.Context, url string, body any, out any) error {
	const attempts = 2
	var lastErr error

	for i := 0; i < attempts; i++ {
		err := p.postOnce(ctx, url, body, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if isTransient(err) && i < attempts-1 {
			log.Printf("pipeline: transient failure on %s, retrying: %v", url, err)
			select {
			case <-time.After(p.Backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		return err
	}
	return lastErr
}

func (p *Pipeline) postOnce(ctx context.Context, url string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{URL: url, Status: res.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func isTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return !se.Permanent()
	}
	// transport-level failure (timeout, refused, reset)
	return true
}

func (p *Pipeline) record(ctx context.Context, sess *session.Checkout, m merchants.Merchant, step Step, url string, err error) {
	if p.Journal == nil {
		return
	}
	if jerr := p.Journal.Record(ctx, sess, m, step, url, err); jerr != nil {
		log.Printf("pipeline: journal write failed: %v", jerr)
	}
}
