package handlers

// @title Package Index Web API
// @version 1.0
// @description Landing page, liveness probe and session endpoints of the private package index.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:6543
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name system
// @tag.description Version and liveness

// @tag.name auth
// @tag.description Session operations
