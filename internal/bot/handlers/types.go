package handlers

import (
	telebot "gopkg.in/telebot.v3"
)

// Handler processes bot commands.
type Handler = telebot.HandlerFunc

// CallbackHandler processes inline callback events.
type CallbackHandler = telebot.HandlerFunc

// Middleware wraps handlers with additional behavior.
type Middleware = telebot.MiddlewareFunc
