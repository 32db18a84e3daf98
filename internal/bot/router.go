package bot

import (
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/bot/handlers"
)

// Router dispatches commands and inline callbacks. Registration happens once
// during bot construction, before any update arrives, so lookups run
// lock-free.
type Router struct {
	commands       map[string]handlers.Handler
	callbacks      map[string]handlers.CallbackHandler
	defaultHandler handlers.Handler
	chain          []handlers.Middleware
	log            *slog.Logger
}

func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:  make(map[string]handlers.Handler),
		callbacks: make(map[string]handlers.CallbackHandler),
		log:       log,
	}
}

func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.commands[cmd] = h
}

func (r *Router) RegisterCallback(data string, h handlers.CallbackHandler) {
	r.callbacks[data] = h
}

// Use appends a middleware; the first registered runs outermost.
func (r *Router) Use(mw handlers.Middleware) {
	r.chain = append(r.chain, mw)
}

func (r *Router) SetDefault(h handlers.Handler) {
	r.defaultHandler = h
}

// Route directs the incoming update to the matching handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	if cb := c.Callback(); cb != nil {
		// telebot prefixes callback data sent by its own buttons with \f.
		return r.routeCallback(c, strings.TrimPrefix(cb.Data, "\f"))
	}

	return r.routeMessage(c)
}

func (r *Router) routeCallback(c telebot.Context, data string) error {
	for registered, handler := range r.callbacks {
		if strings.HasPrefix(data, registered) {
			return r.run(handler, c)
		}
	}

	r.log.Info("no callback handler found", slog.String("data", data))
	return c.Respond()
}

func (r *Router) routeMessage(c telebot.Context) error {
	text := c.Text()

	if strings.HasPrefix(text, "/") {
		// Telegram appends deep-link payloads after a space.
		cmd, _, _ := strings.Cut(text, " ")
		if handler, ok := r.commands[cmd]; ok {
			return r.run(handler, c)
		}
	}

	if r.defaultHandler != nil {
		return r.run(r.defaultHandler, c)
	}

	return nil
}

func (r *Router) run(h handlers.Handler, c telebot.Context) error {
	if h == nil {
		return nil
	}

	for i := len(r.chain) - 1; i >= 0; i-- {
		h = r.chain[i](h)
		if h == nil {
			return nil
		}
	}

	return h(c)
}
