package api

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"empowerher/db"
	"empowerher/models"
	"empowerher/utils"

	"github.com/gin-gonic/gin"
)

var entityTypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

// entityType validates the :type path segment. Profiles hold password hashes
// and are only reachable through /auth and /profiles.
func entityType(c *gin.Context) (string, bool) {
	name := c.Param("type")
	if !entityTypePattern.MatchString(name) {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid entity type '%s'.", name))
		return "", false
	}
	if name == models.EntityProfile {
		utils.GinForbidden(c, "Profiles are managed through /auth and /profiles.")
		return "", false
	}
	return name, true
}

// writableEntityType is entityType for routes that write. The stats record is
// readable here but only the ledger may change it.
func writableEntityType(c *gin.Context) (string, bool) {
	name, ok := entityType(c)
	if !ok {
		return "", false
	}
	if name == models.EntityUserStats {
		utils.GinForbidden(c, "Stats are managed through /stats and /progress.")
		return "", false
	}
	return name, true
}

// --- List Records ---

// ListRecordsResponse is one page of records.
type ListRecordsResponse struct {
	Data  []models.Record `json:"data"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ListRecordsHandler lists, filters, sorts and paginates one entity type.
// @Summary      List records of an entity type
// @Description  Returns the records of `type` in collection order unless `sort_by` is given. A type nobody wrote to yet is an empty list, not an error.
// @Description
// @Description  *   `content_query`: repeatable. Conditions of the form `path operator value` alternating with `and`/`or`, evaluated left to right.
// @Description      Operators: `equals`, `notequals`, `greaterthan`, `lessthan`, `greaterthanorequals`, `lessthanorequals`, `contains`, `startswith`, `endswith`
// @Description      (the string ones also accept an `-insensitive` suffix).
// @Description      Example: `?content_query=module_type equals legal_rights&content_query=and&content_query=completion_percentage equals 100`
// @Description  *   `sort_by`: any field path, default `createdAt`.
// @Description  *   `order`: `asc` (default) or `desc`.
// @Description  *   `page` / `limit`: 1-based page, default limit 20, capped at 100.
// @Tags         Records
// @Produce      json
// @Param        type          path      string   true   "Entity type, e.g. TrainingProgress." example(TrainingProgress)
// @Param        content_query query     []string false  "Filter conditions and logical operators." collectionFormat(multi)
// @Param        sort_by       query     string   false  "Field path to sort by." default(createdAt)
// @Param        order         query     string   false  "Sort direction." Enums(asc, desc) default(asc)
// @Param        page          query     int      false  "Page number." minimum(1) default(1)
// @Param        limit         query     int      false  "Records per page." minimum(1) maximum(100) default(20)
// @Success      200  {object}  ListRecordsResponse "One page of matching records and the total match count."
// @Failure      400  {object}  utils.APIError      "Bad Request: invalid type, query syntax, order, page or limit."
// @Failure      500  {object}  utils.APIError      "Internal Server Error: the collection could not be read."
// @Router       /entities/{type} [get]
func ListRecordsHandler(c *gin.Context, store *db.Store) {
	name, ok := entityType(c)
	if !ok {
		return
	}

	page, errPage := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, errLimit := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if errPage != nil || errLimit != nil || page < 1 || limit < 1 {
		utils.GinBadRequest(c, "Invalid 'page' or 'limit' query parameter. Must be positive integers.")
		return
	}
	if limit > 100 {
		limit = 100
	}

	records, total, err := db.QueryRecords(c.Request.Context(), store, name, db.QueryParams{
		ContentQuery: c.QueryArray("content_query"),
		SortBy:       c.DefaultQuery("sort_by", models.FieldCreatedAt),
		Order:        c.DefaultQuery("order", "asc"),
		Page:         page,
		Limit:        limit,
	})
	if errors.Is(err, db.ErrInvalidQuery) {
		utils.GinBadRequest(c, err.Error())
		return
	}
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to query %s: %v", name, err))
		return
	}

	c.JSON(http.StatusOK, ListRecordsResponse{Data: records, Total: total, Page: page, Limit: limit})
}

// --- Create Record ---

// CreateRecordHandler appends a record.
// @Summary      Create a record
// @Description  Appends a record to `type`. The server assigns `id`, `createdAt` and `updatedAt`; values sent for them are ignored.
// @Tags         Records
// @Accept       json
// @Produce      json
// @Param        type    path  string          true  "Entity type." example(EmergencyContact)
// @Param        record  body  map[string]any  true  "Arbitrary JSON object."
// @Success      201  {object}  map[string]any "The stored record."
// @Failure      400  {object}  utils.APIError "Bad Request: invalid type or the body is not a JSON object."
// @Failure      500  {object}  utils.APIError "Internal Server Error: the record could not be saved."
// @Failure      403  {object}  utils.APIError "Forbidden: Profile and UserStats are not writable here."
// @Router       /entities/{type} [post]
func CreateRecordHandler(c *gin.Context, store *db.Store) {
	name, ok := writableEntityType(c)
	if !ok {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	rec, err := store.Create(c.Request.Context(), name, fields)
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to create record: %v", err))
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// --- Get Record ---

// GetRecordHandler returns one record by id.
// @Summary      Get a record
// @Tags         Records
// @Produce      json
// @Param        type  path  string  true  "Entity type."
// @Param        id    path  string  true  "Record id."
// @Success      200  {object}  map[string]any "The record."
// @Failure      400  {object}  utils.APIError "Bad Request: invalid type."
// @Failure      404  {object}  utils.APIError "Not Found: no record with this id."
// @Failure      500  {object}  utils.APIError "Internal Server Error: the collection could not be read."
// @Router       /entities/{type}/{id} [get]
func GetRecordHandler(c *gin.Context, store *db.Store) {
	name, ok := entityType(c)
	if !ok {
		return
	}
	id := c.Param("id")

	rec, err := store.Get(c.Request.Context(), name, id)
	if errors.Is(err, db.ErrNotFound) {
		utils.GinNotFound(c, fmt.Sprintf("%s with ID '%s' not found.", name, id))
		return
	}
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to read record: %v", err))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// --- Update Record ---

// UpdateRecordHandler merges the body over an existing record.
// @Summary      Update a record
// @Description  Merges the given fields over the record. Fields not sent are kept; `updatedAt` is refreshed.
// @Tags         Records
// @Accept       json
// @Produce      json
// @Param        type    path  string          true  "Entity type."
// @Param        id      path  string          true  "Record id."
// @Param        fields  body  map[string]any  true  "Fields to merge."
// @Success      200  {object}  map[string]any "The merged record."
// @Failure      400  {object}  utils.APIError "Bad Request: invalid type or body."
// @Failure      404  {object}  utils.APIError "Not Found: no record with this id. Nothing was written."
// @Failure      500  {object}  utils.APIError "Internal Server Error: the record could not be saved."
// @Failure      403  {object}  utils.APIError "Forbidden: Profile and UserStats are not writable here."
// @Router       /entities/{type}/{id} [put]
func UpdateRecordHandler(c *gin.Context, store *db.Store) {
	name, ok := writableEntityType(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	rec, found, err := store.Update(c.Request.Context(), name, id, fields)
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to update record: %v", err))
		return
	}
	if !found {
		utils.GinNotFound(c, fmt.Sprintf("%s with ID '%s' not found.", name, id))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// --- Delete Record ---

// DeleteRecordHandler removes a record. Deleting an unknown id succeeds.
// @Summary      Delete a record
// @Tags         Records
// @Param        type  path  string  true  "Entity type."
// @Param        id    path  string  true  "Record id."
// @Success      204  "Deleted, or there was nothing to delete."
// @Failure      400  {object}  utils.APIError "Bad Request: invalid type."
// @Failure      500  {object}  utils.APIError "Internal Server Error: the collection could not be saved."
// @Failure      403  {object}  utils.APIError "Forbidden: Profile and UserStats are not writable here."
// @Router       /entities/{type}/{id} [delete]
func DeleteRecordHandler(c *gin.Context, store *db.Store) {
	name, ok := writableEntityType(c)
	if !ok {
		return
	}
	if err := store.Delete(c.Request.Context(), name, c.Param("id")); err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to delete record: %v", err))
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Upsert Record ---

// UpsertRequest selects a record with a content query and carries the fields to write.
type UpsertRequest struct {
	Match  []string       `json:"match" binding:"required"`
	Fields map[string]any `json:"fields" binding:"required"`
}

// UpsertRecordHandler updates the first record matching the query or creates one.
// @Summary      Update or create a record
// @Description  Finds the first record of `type` (in collection order) satisfying `match` and merges `fields` into it.
// @Description  When nothing matches, a new record is created from `fields`.
// @Description
// @Description  `match` uses the same syntax as `content_query`, e.g. `["module_type equals legal_rights", "and", "lesson_id equals intro"]`.
// @Tags         Records
// @Accept       json
// @Produce      json
// @Param        type     path  string         true  "Entity type."
// @Param        request  body  UpsertRequest  true  "Match conditions and fields."
// @Success      200  {object}  map[string]any "The updated or created record."
// @Failure      400  {object}  utils.APIError "Bad Request: invalid type, body or match syntax."
// @Failure      500  {object}  utils.APIError "Internal Server Error: the record could not be saved."
// @Failure      403  {object}  utils.APIError "Forbidden: Profile and UserStats are not writable here."
// @Router       /entities/{type}/upsert [post]
func UpsertRecordHandler(c *gin.Context, store *db.Store) {
	name, ok := writableEntityType(c)
	if !ok {
		return
	}
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if len(req.Match) == 0 {
		utils.GinBadRequest(c, "'match' must contain at least one condition.")
		return
	}
	pred, err := db.Where(req.Match...)
	if err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid match: %v", err))
		return
	}

	rec, err := store.Upsert(c.Request.Context(), name, pred, req.Fields)
	if err != nil {
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to upsert record: %v", err))
		return
	}
	c.JSON(http.StatusOK, rec)
}
