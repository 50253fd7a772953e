package facebook_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/lisanmuaddib/pagesync/pkg/interfaces/facebook"
)

func newTestClient(server *httptest.Server) *facebook.FacebookClient {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := facebook.NewFacebookClient(&facebook.FacebookConfig{
		PageID:      "page1",
		AccessToken: "token",
		BaseURL:     server.URL,
		APIVersion:  "v19.0",
		Logger:      logger,
	})
	Expect(err).NotTo(HaveOccurred())
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

var _ = Describe("FacebookClient", func() {
	var (
		ctx     context.Context
		server  *httptest.Server
		handler http.HandlerFunc
		client  *facebook.FacebookClient
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			handler(w, r)
		}))
		client = newTestClient(server)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("FetchPosts", func() {
		It("follows paging.next until the limit is reached", func() {
			var calls int32
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/v19.0/page1/posts"))
				Expect(r.URL.Query().Get("access_token")).To(Equal("token"))
				n := atomic.AddInt32(&calls, 1)
				switch r.URL.Query().Get("after") {
				case "":
					Expect(r.URL.Query().Get("limit")).To(Equal("3"))
					writeJSON(w, 200, fmt.Sprintf(`{"data":[
						{"id":"p1","message":"first","created_time":"2024-03-01T10:00:00+0000"},
						{"id":"p2","created_time":"2024-03-01T09:00:00+0000"}
					],"paging":{"next":"%s/v19.0/page1/posts?after=c2&access_token=token"}}`, server.URL))
				default:
					Expect(n).To(BeEquivalentTo(2))
					writeJSON(w, 200, `{"data":[
						{"id":"p3","message":"third","created_time":"2024-03-01T08:00:00+0000"},
						{"id":"p4","message":"fourth","created_time":"2024-03-01T07:00:00+0000"}
					],"paging":{"next":"never-followed"}}`)
				}
			}

			page, err := client.FetchPosts(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(3))
			Expect(page.Items[0].ID).To(Equal("p1"))
			Expect(*page.Items[0].Message).To(Equal("first"))
			Expect(page.Items[1].Message).To(BeNil())
			Expect(page.Items[2].ID).To(Equal("p3"))
			Expect(page.Items[0].CreatedTime.Hour()).To(Equal(10))
			Expect(atomic.LoadInt32(&calls)).To(BeEquivalentTo(2))
		})

		It("caps the requested page size", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("limit")).To(Equal("100"))
				writeJSON(w, 200, `{"data":[]}`)
			}

			page, err := client.FetchPosts(ctx, 500)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).NotTo(BeNil())
			Expect(page.Items).To(BeEmpty())
		})

		It("skips a malformed item without failing the page", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, `{"data":[
					{"id":"p1","created_time":"2024-03-01T10:00:00+0000"},
					{"id":"p2","created_time":"not a time"},
					{"message":"no id","created_time":"2024-03-01T10:00:00+0000"},
					{"id":"p4","created_time":"2024-03-01T11:00:00+0000"}
				]}`)
			}

			page, err := client.FetchPosts(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(2))
			Expect(page.Skipped).To(Equal(2))
		})
	})

	Describe("errors", func() {
		DescribeTable("classifies Graph errors",
			func(status int, body string, kind facebook.ErrorKind, retryable bool) {
				handler = func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, status, body)
				}

				page, err := client.FetchComments(ctx, "p1", 10)
				Expect(page).To(BeNil())
				Expect(err).To(HaveOccurred())
				Expect(facebook.KindOf(err)).To(Equal(kind))
				Expect(facebook.IsRetryable(err)).To(Equal(retryable))
			},
			Entry("expired token", 400, `{"error":{"message":"Session has expired","type":"OAuthException","code":190}}`, facebook.KindAuthInvalid, false),
			Entry("app rate limit", 400, `{"error":{"message":"limit","code":4}}`, facebook.KindRateLimited, true),
			Entry("page rate limit", 400, `{"error":{"message":"limit","code":32}}`, facebook.KindRateLimited, true),
			Entry("missing permission", 403, `{"error":{"message":"perm","code":200}}`, facebook.KindPermissionDenied, false),
			Entry("unknown object", 400, `{"error":{"message":"Unsupported get request","code":100,"error_subcode":33}}`, facebook.KindNotFound, false),
			Entry("server error without body", 502, `bad gateway`, facebook.KindTransientNetwork, true),
			Entry("too many requests", 429, ``, facebook.KindRateLimited, true),
		)

		It("reports an unparseable success body as malformed", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, `<html>`)
			}

			_, err := client.FetchConversations(ctx, 5)
			Expect(facebook.KindOf(err)).To(Equal(facebook.KindMalformedResponse))
		})

		It("reports network failures as transient", func() {
			server.Close()

			_, err := client.FetchPosts(ctx, 5)
			Expect(facebook.KindOf(err)).To(Equal(facebook.KindTransientNetwork))
			Expect(err.Error()).NotTo(ContainSubstring("token"))
		})
	})

	Describe("FetchConversations", func() {
		It("decodes participants and defaults can_reply", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Query().Get("limit")).To(Equal("50"))
				writeJSON(w, 200, `{"data":[
					{"id":"t1","snippet":"hello","updated_time":"2024-03-01T10:00:00+0000","message_count":3,
					 "participants":{"data":[{"id":"u1","name":"Ana"},{"id":"page1","name":"Shop"}]}},
					{"id":"t2","snippet":"bye","updated_time":"2024-03-01T10:00:00+0000","can_reply":false}
				]}`)
			}

			page, err := client.FetchConversations(ctx, 80)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(2))
			Expect(page.Items[0].Participants).To(HaveLen(2))
			Expect(page.Items[0].CanReply).To(BeTrue())
			Expect(page.Items[0].MessageCount).To(Equal(3))
			Expect(page.Items[1].CanReply).To(BeFalse())
			Expect(page.Items[1].Participants).To(BeEmpty())
		})
	})

	Describe("FetchMessages", func() {
		It("flags attachments and recipients", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/v19.0/t1/messages"))
				writeJSON(w, 200, `{"data":[
					{"id":"m1","message":"pic","created_time":"2024-03-01T10:00:00+0000",
					 "from":{"id":"u1","name":"Ana"},"to":{"data":[{"id":"page1","name":"Shop"}]},
					 "attachments":{"data":[{"id":"a1"}]}}
				]}`)
			}

			page, err := client.FetchMessages(ctx, "t1", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			m := page.Items[0]
			Expect(m.From.Name).To(Equal("Ana"))
			Expect(m.To).To(ConsistOf(facebook.Author{ID: "page1", Name: "Shop"}))
			Expect(m.HasAttachments).To(BeTrue())
		})
	})

	Describe("writes", func() {
		It("posts a reply as a form", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/v19.0/c1/comments"))
				Expect(r.ParseForm()).To(Succeed())
				Expect(r.PostForm.Get("message")).To(Equal("Thanks!"))
				writeJSON(w, 200, `{"id":"c1_r1"}`)
			}

			id, err := client.PostReply(ctx, "c1", "Thanks!")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("c1_r1"))
		})

		It("sends a Messenger response", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/v19.0/me/messages"))
				var body map[string]interface{}
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body["messaging_type"]).To(Equal("RESPONSE"))
				Expect(body["recipient"]).To(HaveKeyWithValue("id", "u1"))
				Expect(body["message"]).To(HaveKeyWithValue("text", "hi"))
				writeJSON(w, 200, `{"recipient_id":"u1","message_id":"m9"}`)
			}

			ok, err := client.SendMessage(ctx, "u1", "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("deletes an object", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodDelete))
				Expect(r.URL.Path).To(Equal("/v19.0/c1"))
				writeJSON(w, 200, `{"success":true}`)
			}

			ok, err := client.DeleteComment(ctx, "c1")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("lists granted permissions", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, `{"data":[
					{"permission":"pages_read_engagement","status":"granted"},
					{"permission":"pages_messaging","status":"declined"}
				]}`)
			}

			perms, err := client.CheckPermissions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(ConsistOf("pages_read_engagement"))
		})
	})
})
