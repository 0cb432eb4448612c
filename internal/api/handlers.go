package api

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	log "github.com/sirupsen/logrus"
	"happiness.app/happiness-creator/internal/auth"
	"happiness.app/happiness-creator/internal/core"
	"happiness.app/happiness-creator/internal/store"
)

const maxUploadSize = 10 << 20

type APIHandler struct {
	userService        *core.UserService
	chatService        *core.ChatService
	communityService   *core.CommunityService
	marketplaceService *core.MarketplaceService
	datingService      *core.DatingService

	sessions  *sessions.CookieStore
	templates map[string]*template.Template
}

func NewAPIHandler(
	us *core.UserService,
	cs *core.ChatService,
	comm *core.CommunityService,
	ms *core.MarketplaceService,
	ds *core.DatingService,
	sessionKey string,
) (*APIHandler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &APIHandler{
		userService:        us,
		chatService:        cs,
		communityService:   comm,
		marketplaceService: ms,
		datingService:      ds,
		sessions:           newCookieStore(sessionKey),
		templates:          templates,
	}, nil
}

// Login

func (h *APIHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r) != nil {
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login", "Login", nil)
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userService.Login(r.PostFormValue("name"))
	if err != nil {
		if errors.Is(err, auth.ErrEmptyName) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		log.Printf("Error logging in: %v", err)
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Name)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", user.ID, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	h.setTokenCookie(w, token)
	log.WithField("user", user.ID).Info("User logged in")
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (h *APIHandler) AccessCodeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	code := r.PostFormValue("code")

	sess, _ := h.sessions.Get(r, sessionName)
	sess.Values[accessCodeKey] = code
	if h.marketplaceService.CanContact(code) {
		sess.AddFlash("Happiness-Paket freigeschaltet.", flashSuccess)
	} else {
		sess.AddFlash(core.UpsellMessage, flashWarning)
	}
	if err := sess.Save(r, w); err != nil {
		log.Printf("Error saving session: %v", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, safeReferer(r, "/marketplace"), http.StatusSeeOther)
}

// Conversation

type chatPage struct {
	Topics    []string
	Subtopics []string
	Topic     string
	Subtopic  string
	Turns     []store.ChatTurn
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	catalogue := h.chatService.Catalogue()
	topic, subtopic := catalogue.Resolve(r.URL.Query().Get("topic"), r.URL.Query().Get("subtopic"))

	turns, err := h.chatService.LoadConversation(r.Context(), session.UserID, topic.Name, subtopic)
	if err != nil {
		log.WithFields(log.Fields{"user": session.UserID, "topic": topic.Name, "subtopic": subtopic}).Errorf("Error loading conversation: %v", err)
		http.Error(w, "Failed to load conversation", http.StatusBadGateway)
		return
	}

	h.render(w, r, "chat", "Gespräch", chatPage{
		Topics:    catalogue.Names(),
		Subtopics: topic.Subtopics,
		Topic:     topic.Name,
		Subtopic:  subtopic,
		Turns:     turns,
	})
}

func (h *APIHandler) PostChatHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	topic, subtopic := h.chatService.Catalogue().Resolve(r.PostFormValue("topic"), r.PostFormValue("subtopic"))
	target := "/chat?" + url.Values{"topic": {topic.Name}, "subtopic": {subtopic}}.Encode()

	_, err := h.chatService.PostMessage(r.Context(), session.UserID, topic.Name, subtopic, r.PostFormValue("message"))
	if err != nil {
		if errors.Is(err, core.ErrEmptyMessage) {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		log.WithFields(log.Fields{"user": session.UserID, "topic": topic.Name, "subtopic": subtopic}).Errorf("Error posting chat message: %v", err)
		http.Error(w, "Failed to get a reply", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Community

type communityPage struct {
	Posts []store.CommunityPost
}

func (h *APIHandler) CommunityHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := h.communityService.Posts()
	if err != nil {
		log.Printf("Error listing community posts: %v", err)
		http.Error(w, "Failed to list posts", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "community", "Community", communityPage{Posts: posts})
}

func (h *APIHandler) PostCommunityHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	_, err := h.communityService.Post(session.UserID, r.PostFormValue("content"))
	if err != nil {
		if errors.Is(err, core.ErrEmptyMessage) {
			http.Redirect(w, r, "/community", http.StatusSeeOther)
			return
		}
		log.Printf("Error publishing post for user %s: %v", session.UserID, err)
		http.Error(w, "Failed to publish post", http.StatusInternalServerError)
		return
	}
	h.redirectWithFlash(w, r, "/community", flashSuccess, "Beitrag veröffentlicht.")
}

// Marketplace

type listingView struct {
	store.Listing
	Own bool
}

type marketplacePage struct {
	Listings   []listingView
	Upsell     string
	UpsellNote string
}

func (h *APIHandler) MarketplaceHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	listings, err := h.marketplaceService.Listings()
	if err != nil {
		log.Printf("Error listing marketplace offers: %v", err)
		http.Error(w, "Failed to list offers", http.StatusInternalServerError)
		return
	}

	views := make([]listingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, listingView{Listing: l, Own: l.UserID == session.UserID})
	}
	h.render(w, r, "marketplace", "Marktplatz", marketplacePage{
		Listings:   views,
		Upsell:     core.UpsellMessage,
		UpsellNote: core.UpsellNote,
	})
}

func (h *APIHandler) CreateListingHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	_, err := h.marketplaceService.CreateListing(session.UserID, core.ListingForm{
		Title:        r.PostFormValue("title"),
		Description:  r.PostFormValue("description"),
		Price:        r.PostFormValue("price"),
		ContactEmail: r.PostFormValue("contact_email"),
	})
	if err != nil {
		if errors.Is(err, core.ErrMissingFields) {
			h.redirectWithFlash(w, r, "/marketplace", flashWarning, "Bitte Titel, Beschreibung und Preis angeben.")
			return
		}
		log.Printf("Error creating listing for user %s: %v", session.UserID, err)
		http.Error(w, "Failed to create listing", http.StatusInternalServerError)
		return
	}
	h.redirectWithFlash(w, r, "/marketplace", flashSuccess, "✅ Angebot wurde veröffentlicht!")
}

func (h *APIHandler) ContactSellerHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	listingID, err := strconv.ParseInt(chi.URLParam(r, "listingID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid listing id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	_, err = h.marketplaceService.ContactSeller(session.UserID, h.accessCode(r), listingID, r.PostFormValue("message"))
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, "/marketplace", flashSuccess, "Deine Nachricht wurde gesendet!")
	case errors.Is(err, core.ErrAccessDenied):
		h.redirectWithFlash(w, r, "/marketplace", flashWarning, core.UpsellMessage)
	case errors.Is(err, core.ErrEmptyMessage):
		h.redirectWithFlash(w, r, "/marketplace", flashWarning, "Bitte eine Nachricht eingeben.")
	case errors.Is(err, core.ErrOwnListing):
		h.redirectWithFlash(w, r, "/marketplace", flashWarning, "Das ist dein eigenes Angebot.")
	case errors.Is(err, core.ErrListingNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.WithFields(log.Fields{"user": session.UserID, "listing": listingID}).Errorf("Error contacting seller: %v", err)
		http.Error(w, "Failed to send message", http.StatusInternalServerError)
	}
}

// Inbox

type messagesPage struct {
	Messages []store.PrivateMessage
}

func (h *APIHandler) InboxHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	messages, err := h.marketplaceService.Inbox(session.UserID)
	if err != nil {
		log.Printf("Error listing inbox for user %s: %v", session.UserID, err)
		http.Error(w, "Failed to list messages", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "messages", "Nachrichten", messagesPage{Messages: messages})
}

// Dating

type datingPage struct {
	Own        *store.DatingProfile
	Profiles   []core.ProfileCard
	FetchError string
}

func (h *APIHandler) DatingHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	var page datingPage

	own, err := h.datingService.OwnProfile(session.UserID)
	if err != nil {
		log.Printf("Error fetching own dating profile for user %s: %v", session.UserID, err)
		page.FetchError = err.Error()
		h.render(w, r, "dating", "Verbindung", page)
		return
	}
	page.Own = own

	profiles, err := h.datingService.OtherProfiles(session.UserID)
	if err != nil {
		log.Printf("Error fetching dating profiles for user %s: %v", session.UserID, err)
		page.FetchError = err.Error()
	} else {
		page.Profiles = profiles
	}
	h.render(w, r, "dating", "Verbindung", page)
}

func (h *APIHandler) SaveProfileHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.redirectWithFlash(w, r, "/dating", flashError, fmt.Sprintf("Fehler beim Speichern: %v", err))
		return
	}

	form := core.ProfileForm{
		Name:        r.FormValue("name"),
		Interest:    r.FormValue("interest"),
		Description: r.FormValue("description"),
	}

	var image *core.ImageUpload
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		image = &core.ImageUpload{Filename: header.Filename, Content: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.redirectWithFlash(w, r, "/dating", flashError, fmt.Sprintf("Fehler beim Speichern: %v", err))
		return
	}

	_, err = h.datingService.SaveProfile(session.UserID, form, image)
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, "/dating", flashSuccess, "✅ Profil gespeichert!")
	case errors.Is(err, core.ErrMissingFields):
		h.redirectWithFlash(w, r, "/dating", flashWarning, "Bitte Name und Interesse angeben.")
	default:
		log.Printf("Error saving dating profile for user %s: %v", session.UserID, err)
		h.redirectWithFlash(w, r, "/dating", flashError, fmt.Sprintf("Fehler beim Speichern: %v", err))
	}
}

// safeReferer returns the same-site path of the Referer header, or fallback.
func safeReferer(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || ref.Host != r.Host {
		return fallback
	}
	// "//host" and "/\host" are read by browsers as links to another site.
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") || strings.HasPrefix(ref.Path, "/\\") {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
