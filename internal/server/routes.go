package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/DavidSemke/TechstackApi/internal/server/api"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
	"github.com/DavidSemke/TechstackApi/internal/server/middleware"
)

type Handlers struct {
	fx.In

	Auth     *api.AuthHandlers
	User     *api.UserHandlers
	Group    *api.GroupHandlers
	Profile  *api.ProfileHandlers
	Tag      *api.TagHandlers
	Post     *api.PostHandlers
	Comment  *api.CommentHandlers
	Reaction *api.ReactionHandlers
}

func SetupRoutes(server *Server, handlers Handlers, auth *biz.AuthService) {
	server.Use(middleware.WithRequestID())
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithAuth(auth))

	// Setup CORS middleware at server level if enabled
	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	root := server.Group("", middleware.WithTimeout(server.Config.RequestTimeout))

	authGroup := root.Group("/auth")
	{
		authGroup.POST("/signin", handlers.Auth.SignIn)
		authGroup.POST("/signup", handlers.Auth.SignUp)
	}

	userGroup := root.Group("/users")
	{
		userGroup.GET("", handlers.User.ListUsers)
		userGroup.GET("/me", middleware.RequireAuth(), handlers.User.Me)
		userGroup.GET("/:id", handlers.User.GetUser)
		userGroup.PUT("/:id", handlers.User.UpdateUser)
		userGroup.PATCH("/:id", handlers.User.PatchUser)
		userGroup.DELETE("/:id", handlers.User.DeleteUser)
	}

	groupGroup := root.Group("/groups")
	{
		groupGroup.POST("", handlers.Group.CreateGroup)
		groupGroup.GET("", handlers.Group.ListGroups)
		groupGroup.GET("/:id", handlers.Group.GetGroup)
		groupGroup.PUT("/:id", handlers.Group.UpdateGroup)
		groupGroup.DELETE("/:id", handlers.Group.DeleteGroup)
	}

	profileGroup := root.Group("/profiles")
	{
		// Profiles are created and removed with their owning user; the
		// lifecycle endpoints answer 405.
		profileGroup.POST("", handlers.Profile.CreateProfile)
		profileGroup.GET("", handlers.Profile.ListProfiles)
		profileGroup.GET("/:id", handlers.Profile.GetProfile)
		profileGroup.PUT("/:id", handlers.Profile.UpdateProfile)
		profileGroup.PATCH("/:id", handlers.Profile.UpdateProfile)
		profileGroup.DELETE("/:id", handlers.Profile.DeleteProfile)
		profileGroup.POST("/:id/follow", middleware.RequireAuth(), handlers.Profile.FollowProfile)
		profileGroup.DELETE("/:id/follow", middleware.RequireAuth(), handlers.Profile.UnfollowProfile)
	}

	tagGroup := root.Group("/tags")
	{
		tagGroup.POST("", handlers.Tag.CreateTag)
		tagGroup.GET("", handlers.Tag.ListTags)
		tagGroup.GET("/:id", handlers.Tag.GetTag)
		tagGroup.PUT("/:id", handlers.Tag.UpdateTag)
		tagGroup.DELETE("/:id", handlers.Tag.DeleteTag)
	}

	postGroup := root.Group("/posts")
	{
		postGroup.POST("", handlers.Post.CreatePost)
		postGroup.GET("", handlers.Post.ListPosts)
		postGroup.GET("/:id", handlers.Post.GetPost)
		postGroup.PUT("/:id", handlers.Post.UpdatePost)
		postGroup.PATCH("/:id", handlers.Post.PatchPost)
		postGroup.DELETE("/:id", handlers.Post.DeletePost)
		postGroup.PUT("/:id/tags/:tagID", handlers.Post.AddPostTag)
		postGroup.DELETE("/:id/tags/:tagID", handlers.Post.RemovePostTag)
	}

	commentGroup := root.Group("/comments")
	{
		commentGroup.POST("", handlers.Comment.CreateComment)
		commentGroup.GET("", handlers.Comment.ListComments)
		commentGroup.GET("/:id", handlers.Comment.GetComment)
		commentGroup.PUT("/:id", handlers.Comment.UpdateComment)
		commentGroup.PATCH("/:id", handlers.Comment.PatchComment)
		commentGroup.DELETE("/:id", handlers.Comment.DeleteComment)
	}

	reactionGroup := root.Group("/reactions")
	{
		reactionGroup.POST("", handlers.Reaction.CreateReaction)
		reactionGroup.GET("", handlers.Reaction.ListReactions)
		reactionGroup.GET("/:id", handlers.Reaction.GetReaction)
		reactionGroup.PUT("/:id", handlers.Reaction.UpdateReaction)
		reactionGroup.DELETE("/:id", handlers.Reaction.DeleteReaction)
	}
}
