// Package data 內嵌的預設配對與食材資料
package data

import _ "embed"

// BasePairs 基礎配對清單，一行一組 "A,B"
//
//go:embed pairings.txt
var BasePairs []byte

// ExperimentalPairs 實驗性配對清單
//
//go:embed experimental_pairings.txt
var ExperimentalPairs []byte

// Profiles 食材風味與分類資料
//
//go:embed profiles.json
var Profiles []byte
