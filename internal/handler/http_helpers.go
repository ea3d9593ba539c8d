package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) renderNotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "error.html", gin.H{
		"title":   "Страница не найдена",
		"status":  http.StatusNotFound,
		"message": "Такой страницы нет.",
	})
}

func (a *API) renderServerError(c *gin.Context, err error) {
	c.Error(err)
	a.renderHTML(c, http.StatusInternalServerError, "error.html", gin.H{
		"title":   "Ошибка",
		"status":  http.StatusInternalServerError,
		"message": "Не удалось загрузить страницу, попробуйте позже.",
	})
}
