package server

import (
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/memeboard/memeboard-backend/model"
	"github.com/memeboard/memeboard-backend/server/middlewares"
	"github.com/memeboard/memeboard-backend/store"
)

// RegisterRoutes attaches the core's HTTP surface to router.
func RegisterRoutes(router *gin.Engine, svc *Service, users middlewares.UserGetter) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, "pong")
	})

	api := router.Group("/api")
	api.Use(middlewares.Actor(users))

	api.POST("/content", uploadHandler(svc))
	api.GET("/content", listHandler(svc))
	api.GET("/content/:id", viewHandler(svc))
	api.GET("/content/:id/download", downloadHandler(svc))
	api.PATCH("/content/:id", updateHandler(svc))
	api.DELETE("/content/:id", deleteHandler(svc))
	api.POST("/content/:id/save", toggleHandler(svc.ToggleSaved))
	api.POST("/content/:id/like", toggleHandler(svc.ToggleLiked))
	api.POST("/content/:id/seen", seenHandler(svc))
	api.POST("/notes", noteHandler(svc))
	api.GET("/users/:id/content", userContentHandler(svc))
	api.POST("/groups", createGroupHandler(svc))
	api.PATCH("/groups/:id", updateGroupHandler(svc))
	api.PUT("/groups/:id/members/:userId", memberHandler(svc.AddMember))
	api.DELETE("/groups/:id/members/:userId", memberHandler(svc.RemoveMember))
	api.GET("/admin/content", adminListHandler(svc))
}

func uploadHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)

		input := IngestInput{
			URL:     c.PostForm("url"),
			Private: c.PostForm("private") == "true",
		}
		if groupId := c.PostForm("group_id"); groupId != "" {
			input.GroupID = &groupId
		}

		if file, err := c.FormFile("file"); err == nil {
			f, err := file.Open()
			if err != nil {
				abortWithError(c, errors.Wrap(model.ErrValidation, "unreadable upload"))
				return
			}
			defer f.Close()
			data, err := ioutil.ReadAll(f)
			if err != nil {
				abortWithError(c, errors.Wrap(model.ErrValidation, "unreadable upload"))
				return
			}
			input.Filename = file.Filename
			input.Data = data
		}

		content, err := svc.Ingest(actor, input)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, content)
	}
}

func listHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)

		filter := store.ContentFilter{Term: c.Query("q")}
		if groupId := c.Query("group_id"); groupId != "" {
			filter.GroupID = &groupId
		}
		if kind := c.Query("kind"); kind != "" {
			k := model.ContentKind(kind)
			filter.Kind = &k
		}

		contents, err := svc.ListVisible(actor, &filter)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, contents)
	}
}

func viewHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		content, err := svc.View(actor, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, content)
	}
}

// downloadHandler serves the stored original bytes as an attachment so
// browsers download instead of rendering inline.
func downloadHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		content, reader, err := svc.Download(actor, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		defer reader.Close()

		data, err := ioutil.ReadAll(reader)
		if err != nil {
			abortWithError(c, errors.Wrapf(model.ErrStorageIO, "fail to stream content %s", content.Id))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", content.Name))
		c.Data(http.StatusOK, "application/octet-stream", data)
	}
}

type updateContentRequest struct {
	Name    *string `json:"name"`
	Details *string `json:"details"`
	Body    *string `json:"body"`
	Private *bool   `json:"private"`
	GroupID *string `json:"group_id"`
}

func updateHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)

		var req updateContentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, errors.Wrap(model.ErrValidation, err.Error()))
			return
		}
		content, err := svc.UpdateContent(actor, c.Param("id"), store.ContentMutation{
			Name:    req.Name,
			Details: req.Details,
			Body:    req.Body,
			Private: req.Private,
			GroupID: req.GroupID,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, content)
	}
}

func deleteHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		var req struct {
			Reason string `json:"reason"`
		}
		// body is optional, reason defaults to empty
		_ = c.ShouldBindJSON(&req)

		if err := svc.SoftDelete(actor, c.Param("id"), req.Reason); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

func toggleHandler(toggle func(*model.User, string) (bool, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		state, err := toggle(actor, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "marked": state})
	}
}

func seenHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		if err := svc.MarkSeen(actor, c.Param("id")); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

func noteHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		var req struct {
			Title   string `json:"title"`
			Body    string `json:"body"`
			Private bool   `json:"private"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, errors.Wrap(model.ErrValidation, err.Error()))
			return
		}
		note, err := svc.CreateNote(actor, req.Title, req.Body, req.Private)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, note)
	}
}

func userContentHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		contents, err := svc.ListUserContent(actor, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, contents)
	}
}

func createGroupHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		var req struct {
			Name    string `json:"name"`
			Private bool   `json:"private"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, errors.Wrap(model.ErrValidation, err.Error()))
			return
		}
		group, err := svc.CreateGroup(actor, req.Name, req.Private)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, group)
	}
}

func updateGroupHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		var req struct {
			Name    *string `json:"name"`
			Private *bool   `json:"private"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, errors.Wrap(model.ErrValidation, err.Error()))
			return
		}
		group, err := svc.UpdateGroup(actor, c.Param("id"), store.GroupMutation{
			Name:    req.Name,
			Private: req.Private,
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, group)
	}
}

func memberHandler(op func(*model.User, string, string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		if err := op(actor, c.Param("id"), c.Param("userId")); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

func adminListHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := middlewares.ActorFromContext(c)
		contents, err := svc.ListAllForAdmin(actor)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, contents)
	}
}

// abortWithError maps core error kinds onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrConflict):
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
